package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// emit prints v as indented JSON when --json is set, otherwise renders the
// tab-separated rows the callback writes.
func emit(v any, rows func(w io.Writer)) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	rows(w)
	return w.Flush()
}

// formatAmount renders integer cents as a decimal string, e.g. 2500 -> 25.00.
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// formatMoney prefixes the amount with its upper-cased currency code.
func formatMoney(cents int64, currency string) string {
	if currency == "" {
		return formatAmount(cents)
	}
	return strings.ToUpper(currency) + " " + formatAmount(cents)
}

// formatWhen renders a timestamp in the local timezone, minute precision.
func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatWhenPtr renders an optional timestamp, "-" when absent.
func formatWhenPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatWhen(*t)
}

// truncate shortens s to max runes with an ellipsis for table columns.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
