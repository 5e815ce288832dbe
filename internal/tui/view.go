package tui

import (
	"fmt"
	"sort"
	"strings"
)

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Theme Browser"))
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(errorBannerStyle.Render("Error: " + m.errorMsg))
		b.WriteString("\n")
	}

	switch m.viewMode {
	case ViewDetail:
		b.WriteString(m.renderDetail())
	case ViewCSS:
		b.WriteString(m.renderCSS())
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.footerHelp()))
	return b.String()
}

func (m Model) renderList() string {
	if m.loading {
		return emptyStateStyle.Render(m.spinner.View() + " Loading themes...")
	}
	if len(m.items) == 0 {
		return emptyStateStyle.Render("No themes yet. Import a pack or create one.")
	}

	var b strings.Builder
	for i, t := range m.items {
		line := fmt.Sprintf("%s %s", paletteStrip(t.Colors), t.Name)
		if version, ok := t.Metadata["version"]; ok {
			line += valueStyle.Render("  v" + version)
		}
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render(line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	t, ok := m.Selected()
	if !ok {
		return emptyStateStyle.Render("Nothing selected.")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Name") + valueStyle.Render(t.Name) + "\n")
	if t.Description != "" {
		b.WriteString(labelStyle.Render("Description") + valueStyle.Render(t.Description) + "\n")
	}
	b.WriteString(labelStyle.Render("ID") + valueStyle.Render(t.ID) + "\n")
	if t.ParentTheme != "" {
		b.WriteString(labelStyle.Render("Parent") + valueStyle.Render(t.ParentTheme) + "\n")
	}

	var colors strings.Builder
	for _, key := range sortedKeys(t.Colors) {
		colors.WriteString(fmt.Sprintf("%s %s %s\n",
			swatch(t.Colors[key]), labelStyle.Render(key), valueStyle.Render(t.Colors[key])))
	}
	b.WriteString(sectionStyle.Render(strings.TrimRight(colors.String(), "\n")))
	b.WriteString("\n")

	var typo strings.Builder
	typo.WriteString(labelStyle.Render("Base font") + valueStyle.Render(t.Typography.FontFamily["base"]) + "\n")
	typo.WriteString(labelStyle.Render("Heading font") + valueStyle.Render(t.Typography.FontFamily["heading"]) + "\n")
	typo.WriteString(labelStyle.Render("Base size") + valueStyle.Render(t.Typography.FontSize["base"]))
	b.WriteString(sectionStyle.Render(typo.String()))
	return b.String()
}

func (m Model) renderCSS() string {
	lines := strings.Split(m.cssText, "\n")
	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := m.cssScroll
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(lines) {
		end = len(lines)
	}
	return sectionStyle.Render(valueStyle.Render(strings.Join(lines[start:end], "\n")))
}

func (m Model) footerHelp() string {
	switch m.viewMode {
	case ViewDetail:
		return "c: css • esc: back • q: quit"
	case ViewCSS:
		return "↑/↓: scroll • esc: back • q: quit"
	default:
		return "↑/↓: navigate • enter: details • c: css • r: reload • q: quit"
	}
}

// paletteStrip renders the primary/secondary/accent swatches inline in list
// rows.
func paletteStrip(colors map[string]string) string {
	var b strings.Builder
	for _, key := range []string{"primary", "secondary", "accent"} {
		if hex, ok := colors[key]; ok {
			b.WriteString(swatch(hex))
		}
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
