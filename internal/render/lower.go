package render

import (
	"strings"
	"unicode"
)

// Lower generates native html/template source from a parsed node tree.
// Interpolations normalize onto the data context: bare paths become
// ".path", identifiers bound by an enclosing for-loop become "$var.path",
// and recognized helper calls keep their arguments.
func Lower(nodes []*Node) string {
	var sb strings.Builder
	lowerNodes(nodes, map[string]bool{}, &sb)
	return sb.String()
}

func lowerNodes(nodes []*Node, scope map[string]bool, sb *strings.Builder) {
	for _, node := range nodes {
		switch node.Kind {
		case KindLiteral:
			sb.WriteString(node.Text)
		case KindOutput:
			sb.WriteString("{{")
			sb.WriteString(rewriteExpr(node.Expr, scope))
			sb.WriteString("}}")
		case KindInclude:
			sb.WriteString(`{{template "`)
			sb.WriteString(PartialKey(node.Category, node.Component))
			sb.WriteString(`" .}}`)
		case KindFor:
			sb.WriteString("{{range $")
			sb.WriteString(node.Var)
			sb.WriteString(" := ")
			sb.WriteString(rewritePath(node.Expr, scope))
			sb.WriteString("}}")
			inner := scopeWith(scope, node.Var)
			lowerNodes(node.Body, inner, sb)
			sb.WriteString("{{end}}")
		case KindIf:
			sb.WriteString("{{if ")
			sb.WriteString(rewritePath(node.Expr, scope))
			sb.WriteString("}}")
			lowerNodes(node.Body, scope, sb)
			if node.Else != nil {
				sb.WriteString("{{else}}")
				lowerNodes(node.Else, scope, sb)
			}
			sb.WriteString("{{end}}")
		}
	}
}

// PartialKey is the template name a component source registers under.
func PartialKey(category, component string) string {
	return category + "_" + component
}

// rewriteExpr handles a full interpolation expression: either a helper call
// whose arguments each rewrite individually, or a single path.
func rewriteExpr(expr string, scope map[string]bool) string {
	fields := strings.Fields(expr)
	if len(fields) > 1 && helperNames[fields[0]] {
		parts := make([]string, 0, len(fields))
		parts = append(parts, fields[0])
		for _, arg := range fields[1:] {
			parts = append(parts, rewriteArg(arg, scope))
		}
		return strings.Join(parts, " ")
	}
	return rewritePath(expr, scope)
}

func rewriteArg(arg string, scope map[string]bool) string {
	if arg == "" {
		return arg
	}
	if arg[0] == '"' || arg[0] == '\'' {
		return strings.ReplaceAll(arg, "'", `"`)
	}
	if isNumeric(arg) {
		return arg
	}
	return rewritePath(arg, scope)
}

func rewritePath(path string, scope map[string]bool) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "." || path[0] == '.' || path[0] == '$' {
		return path
	}
	head, _, _ := strings.Cut(path, ".")
	if scope[head] {
		return "$" + path
	}
	return "." + path
}

func scopeWith(scope map[string]bool, name string) map[string]bool {
	inner := make(map[string]bool, len(scope)+1)
	for k := range scope {
		inner[k] = true
	}
	inner[name] = true
	return inner
}

func isNumeric(s string) bool {
	dot := false
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
