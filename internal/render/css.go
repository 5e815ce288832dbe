package render

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/forgesites/themekit/internal/theme"
)

// GenerateThemeCSS emits one CSS custom property per leaf token. Output is
// deterministic: namespaces appear in a fixed order and keys sort within each
// namespace. Component override values beginning with "$" are resolved as
// reference paths into the theme; a reference that does not resolve is
// emitted literally.
func (r *Renderer) GenerateThemeCSS(t theme.Theme) string {
	var sb strings.Builder
	sb.WriteString(":root {\n")

	writeTokenGroup(&sb, "color", t.Colors)
	writeTokenGroup(&sb, "font-family", t.Typography.FontFamily)
	writeTokenGroup(&sb, "font-size", t.Typography.FontSize)
	writeTokenGroup(&sb, "font-weight", t.Typography.FontWeight)
	writeTokenGroup(&sb, "line-height", t.Typography.LineHeight)
	writeTokenGroup(&sb, "spacing", t.Spacing)
	writeTokenGroup(&sb, "border", t.Borders)
	writeTokenGroup(&sb, "shadow", t.Shadows)
	writeTokenGroup(&sb, "layout", t.Layout)

	for _, name := range sortedMapKeys(t.Components) {
		props := t.Components[name]
		for _, prop := range sortedStringKeys(props) {
			value := props[prop]
			if strings.HasPrefix(value, "$") {
				if resolved, ok := theme.Token(t, value[1:]); ok {
					value = resolved
				}
			}
			fmt.Fprintf(&sb, "  --%s-%s: %s;\n", kebabCase(name), kebabCase(prop), value)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func writeTokenGroup(sb *strings.Builder, prefix string, tokens map[string]string) {
	for _, key := range sortedStringKeys(tokens) {
		fmt.Fprintf(sb, "  --%s-%s: %s;\n", prefix, kebabCase(key), tokens[key])
	}
}

// kebabCase converts camelCase token keys to kebab-case CSS identifiers.
func kebabCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMapKeys(m map[string]map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
