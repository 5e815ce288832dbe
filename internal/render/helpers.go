package render

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var helperNames = map[string]bool{
	"currency":   true,
	"truncate":   true,
	"formatDate": true,
}

func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"currency":   currencyHelper,
		"truncate":   truncateHelper,
		"formatDate": formatDateHelper,
	}
}

// currencyHelper formats a numeric value with a currency symbol, thousands
// separators, and two decimal places. The symbol defaults to "$".
func currencyHelper(value any, symbol ...string) string {
	sym := "$"
	if len(symbol) > 0 && symbol[0] != "" {
		sym = symbol[0]
	}

	amount, ok := toFloat(value)
	if !ok {
		return fmt.Sprintf("%s%v", sym, value)
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}
	formatted := groupThousands(fmt.Sprintf("%.2f", amount))
	if negative {
		return "-" + sym + formatted
	}
	return sym + formatted
}

// truncateHelper shortens a string to at most length runes, appending an
// ellipsis when anything was cut.
func truncateHelper(s string, length int) string {
	if length <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return strings.TrimRight(string(runes[:length]), " ") + "..."
}

var datePresets = map[string]string{
	"short":    "Jan 2, 2006",
	"long":     "Monday, January 2, 2006",
	"time":     "3:04 PM",
	"datetime": "Jan 2, 2006 3:04 PM",
}

var dateTokens = strings.NewReplacer(
	"%Y", "2006",
	"%m", "01",
	"%d", "02",
	"%H", "15",
	"%M", "04",
	"%S", "05",
)

// formatDateHelper formats a time value using a named preset or a
// token-substitution pattern (%Y %m %d %H %M %S).
func formatDateHelper(value any, format string) string {
	t, ok := toTime(value)
	if !ok {
		return fmt.Sprint(value)
	}
	layout, isPreset := datePresets[format]
	if !isPreset {
		layout = dateTokens.Replace(format)
	}
	return t.Format(layout)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func groupThousands(formatted string) string {
	whole, frac, _ := strings.Cut(formatted, ".")
	if len(whole) <= 3 {
		return whole + "." + frac
	}
	var sb strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		sb.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(whole[i : i+3])
	}
	return sb.String() + "." + frac
}
