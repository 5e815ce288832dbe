package theme

import "strings"

// Token resolves a dotted token path ("colors.primary",
// "typography.fontSize.base", "components.button.background") against a
// theme. The boolean result reports whether the path resolved to a non-empty
// value.
func Token(t Theme, path string) (string, bool) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "colors":
		return lookup1(t.Colors, parts)
	case "spacing":
		return lookup1(t.Spacing, parts)
	case "borders":
		return lookup1(t.Borders, parts)
	case "shadows":
		return lookup1(t.Shadows, parts)
	case "layout":
		return lookup1(t.Layout, parts)
	case "metadata":
		return lookup1(t.Metadata, parts)
	case "typography":
		if len(parts) != 3 {
			return "", false
		}
		switch parts[1] {
		case "fontFamily":
			return nonEmpty(t.Typography.FontFamily[parts[2]])
		case "fontSize":
			return nonEmpty(t.Typography.FontSize[parts[2]])
		case "fontWeight":
			return nonEmpty(t.Typography.FontWeight[parts[2]])
		case "lineHeight":
			return nonEmpty(t.Typography.LineHeight[parts[2]])
		}
		return "", false
	case "components":
		if len(parts) != 3 || t.Components == nil {
			return "", false
		}
		return nonEmpty(t.Components[parts[1]][parts[2]])
	}
	return "", false
}

func lookup1(m map[string]string, parts []string) (string, bool) {
	if len(parts) != 2 || m == nil {
		return "", false
	}
	return nonEmpty(m[parts[1]])
}

func nonEmpty(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	return v, true
}
