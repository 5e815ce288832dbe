// Package theme defines the versionable theme entity, its customization
// algebra, and the Manager that owns theme persistence and history.
package theme

import (
	"time"

	"github.com/google/uuid"
)

// Typography groups the font-related token namespaces. Each sub-map is
// independently mergeable.
type Typography struct {
	FontFamily map[string]string `json:"fontFamily"`
	FontSize   map[string]string `json:"fontSize"`
	FontWeight map[string]string `json:"fontWeight"`
	LineHeight map[string]string `json:"lineHeight"`
}

// Theme is a versioned bundle of visual design tokens applicable to a site.
// The ID is immutable once assigned; mutation always produces a new Theme
// value that keeps the identity fields and refreshes UpdatedAt.
type Theme struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description,omitempty"`
	Colors      map[string]string            `json:"colors"`
	Typography  Typography                   `json:"typography"`
	Spacing     map[string]string            `json:"spacing"`
	Borders     map[string]string            `json:"borders"`
	Shadows     map[string]string            `json:"shadows"`
	Layout      map[string]string            `json:"layout"`
	Components  map[string]map[string]string `json:"components"`
	ParentTheme string                       `json:"parentTheme,omitempty"`
	Metadata    map[string]string            `json:"metadata,omitempty"`
	CreatedAt   time.Time                    `json:"createdAt"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

// Changes is a partial theme: every namespace is optional and supplies only
// the keys it overrides. Nil maps leave the corresponding namespace intact.
type Changes struct {
	Name        string                       `json:"name,omitempty"`
	Description string                       `json:"description,omitempty"`
	Colors      map[string]string            `json:"colors,omitempty"`
	Typography  Typography                   `json:"typography,omitempty"`
	Spacing     map[string]string            `json:"spacing,omitempty"`
	Borders     map[string]string            `json:"borders,omitempty"`
	Shadows     map[string]string            `json:"shadows,omitempty"`
	Layout      map[string]string            `json:"layout,omitempty"`
	Components  map[string]map[string]string `json:"components,omitempty"`
}

// IsEmpty reports whether the change set carries no overrides at all.
func (c Changes) IsEmpty() bool {
	return c.Name == "" && c.Description == "" &&
		len(c.Colors) == 0 && len(c.Spacing) == 0 && len(c.Borders) == 0 &&
		len(c.Shadows) == 0 && len(c.Layout) == 0 && len(c.Components) == 0 &&
		len(c.Typography.FontFamily) == 0 && len(c.Typography.FontSize) == 0 &&
		len(c.Typography.FontWeight) == 0 && len(c.Typography.LineHeight) == 0
}

// Template pairs an embedded theme snapshot with layout references and the
// list of components an installed site starts with.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	Theme       Theme             `json:"theme"`
	Layout      map[string]string `json:"layout,omitempty"`
	Components  []string          `json:"components,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// DefaultColors returns the built-in palette applied when a theme is created
// without explicit colors.
func DefaultColors() map[string]string {
	return map[string]string{
		"primary":    "#3498db",
		"secondary":  "#2ecc71",
		"accent":     "#e74c3c",
		"background": "#ffffff",
		"surface":    "#f8f9fa",
		"text":       "#333333",
		"muted":      "#7f8c8d",
		"border":     "#e0e0e0",
		"success":    "#27ae60",
		"warning":    "#f39c12",
		"error":      "#c0392b",
		"info":       "#2980b9",
	}
}

// DefaultTypography returns the built-in font stacks and scales.
func DefaultTypography() Typography {
	return Typography{
		FontFamily: map[string]string{
			"base":    "'Helvetica Neue', Helvetica, Arial, sans-serif",
			"heading": "'Helvetica Neue', Helvetica, Arial, sans-serif",
			"mono":    "'SF Mono', Menlo, Consolas, monospace",
		},
		FontSize: map[string]string{
			"base":  "16px",
			"small": "14px",
			"large": "18px",
			"h1":    "32px",
			"h2":    "24px",
			"h3":    "20px",
		},
		FontWeight: map[string]string{
			"normal": "400",
			"medium": "500",
			"bold":   "700",
		},
		LineHeight: map[string]string{
			"base":    "1.6",
			"heading": "1.25",
		},
	}
}

// DefaultSpacing returns the built-in spacing scale.
func DefaultSpacing() map[string]string {
	return map[string]string{
		"xs": "4px",
		"sm": "8px",
		"md": "16px",
		"lg": "24px",
		"xl": "32px",
	}
}

// DefaultBorders returns the built-in border tokens.
func DefaultBorders() map[string]string {
	return map[string]string{
		"radius": "4px",
		"width":  "1px",
		"style":  "solid",
		"color":  "#e0e0e0",
	}
}

// DefaultShadows returns the built-in shadow tokens.
func DefaultShadows() map[string]string {
	return map[string]string{
		"sm": "0 1px 2px rgba(0,0,0,0.08)",
		"md": "0 2px 8px rgba(0,0,0,0.12)",
		"lg": "0 8px 24px rgba(0,0,0,0.16)",
	}
}

// DefaultLayout returns the built-in layout tokens.
func DefaultLayout() map[string]string {
	return map[string]string{
		"maxWidth": "1200px",
		"gutter":   "16px",
	}
}

// New builds a theme from partial input, filling structural defaults for any
// namespace the caller did not supply. A missing id is generated.
func New(partial Theme, now time.Time) Theme {
	t := partial
	if t.ID == "" {
		t.ID = "theme_" + uuid.NewString()
	}
	if t.Name == "" {
		t.Name = "Untitled Theme"
	}
	if t.Colors == nil {
		t.Colors = DefaultColors()
	}
	if t.Typography.FontFamily == nil {
		t.Typography.FontFamily = DefaultTypography().FontFamily
	}
	if t.Typography.FontSize == nil {
		t.Typography.FontSize = DefaultTypography().FontSize
	}
	if t.Typography.FontWeight == nil {
		t.Typography.FontWeight = DefaultTypography().FontWeight
	}
	if t.Typography.LineHeight == nil {
		t.Typography.LineHeight = DefaultTypography().LineHeight
	}
	if t.Spacing == nil {
		t.Spacing = DefaultSpacing()
	}
	if t.Borders == nil {
		t.Borders = DefaultBorders()
	}
	if t.Shadows == nil {
		t.Shadows = DefaultShadows()
	}
	if t.Layout == nil {
		t.Layout = DefaultLayout()
	}
	if t.Components == nil {
		t.Components = map[string]map[string]string{}
	}
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return t
}

// Customize applies a change set to a base theme and returns the resulting
// new theme. Each namespace merges key-wise: keys present in changes override
// the base, keys absent are preserved. Identity fields (ID, ParentTheme,
// CreatedAt) are retained; UpdatedAt is refreshed.
func Customize(base Theme, changes Changes, now time.Time) Theme {
	result := Clone(base)
	if changes.Name != "" {
		result.Name = changes.Name
	}
	if changes.Description != "" {
		result.Description = changes.Description
	}
	result.Colors = mergeTokens(result.Colors, changes.Colors)
	result.Typography.FontFamily = mergeTokens(result.Typography.FontFamily, changes.Typography.FontFamily)
	result.Typography.FontSize = mergeTokens(result.Typography.FontSize, changes.Typography.FontSize)
	result.Typography.FontWeight = mergeTokens(result.Typography.FontWeight, changes.Typography.FontWeight)
	result.Typography.LineHeight = mergeTokens(result.Typography.LineHeight, changes.Typography.LineHeight)
	result.Spacing = mergeTokens(result.Spacing, changes.Spacing)
	result.Borders = mergeTokens(result.Borders, changes.Borders)
	result.Shadows = mergeTokens(result.Shadows, changes.Shadows)
	result.Layout = mergeTokens(result.Layout, changes.Layout)
	result.Components = mergeComponents(result.Components, changes.Components)
	result.UpdatedAt = now
	return result
}

// MergeParent overlays a child theme on top of its parent: every token the
// child defines wins, every token it omits falls through to the parent.
// Identity fields come from the child.
func MergeParent(child, parent Theme, now time.Time) Theme {
	result := Clone(parent)
	result.ID = child.ID
	result.Name = child.Name
	result.Description = child.Description
	result.ParentTheme = child.ParentTheme
	result.Metadata = cloneTokens(child.Metadata)
	result.CreatedAt = child.CreatedAt
	result.Colors = mergeTokens(result.Colors, child.Colors)
	result.Typography.FontFamily = mergeTokens(result.Typography.FontFamily, child.Typography.FontFamily)
	result.Typography.FontSize = mergeTokens(result.Typography.FontSize, child.Typography.FontSize)
	result.Typography.FontWeight = mergeTokens(result.Typography.FontWeight, child.Typography.FontWeight)
	result.Typography.LineHeight = mergeTokens(result.Typography.LineHeight, child.Typography.LineHeight)
	result.Spacing = mergeTokens(result.Spacing, child.Spacing)
	result.Borders = mergeTokens(result.Borders, child.Borders)
	result.Shadows = mergeTokens(result.Shadows, child.Shadows)
	result.Layout = mergeTokens(result.Layout, child.Layout)
	result.Components = mergeComponents(result.Components, child.Components)
	result.UpdatedAt = now
	return result
}

// Clone returns a deep copy. The copy shares nothing with the original, so
// callers can mutate it freely.
func Clone(t Theme) Theme {
	c := t
	c.Colors = cloneTokens(t.Colors)
	c.Typography.FontFamily = cloneTokens(t.Typography.FontFamily)
	c.Typography.FontSize = cloneTokens(t.Typography.FontSize)
	c.Typography.FontWeight = cloneTokens(t.Typography.FontWeight)
	c.Typography.LineHeight = cloneTokens(t.Typography.LineHeight)
	c.Spacing = cloneTokens(t.Spacing)
	c.Borders = cloneTokens(t.Borders)
	c.Shadows = cloneTokens(t.Shadows)
	c.Layout = cloneTokens(t.Layout)
	c.Metadata = cloneTokens(t.Metadata)
	if t.Components != nil {
		c.Components = make(map[string]map[string]string, len(t.Components))
		for name, props := range t.Components {
			c.Components[name] = cloneTokens(props)
		}
	}
	return c
}

func cloneTokens(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeTokens(base, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return base
	}
	out := cloneTokens(base)
	if out == nil {
		out = make(map[string]string, len(overrides))
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func mergeComponents(base, overrides map[string]map[string]string) map[string]map[string]string {
	if len(overrides) == 0 {
		return base
	}
	out := make(map[string]map[string]string, len(base)+len(overrides))
	for name, props := range base {
		out[name] = cloneTokens(props)
	}
	for name, props := range overrides {
		out[name] = mergeTokens(out[name], props)
	}
	return out
}
