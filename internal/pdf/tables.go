package pdf

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TaxRate is the fixed sales-tax rate applied to every quote subtotal.
const TaxRate = 0.05

var moneyCleanRe = regexp.MustCompile(`[^0-9.\-]+`)

// ParseTable converts the raw lines of a markdown table section into a
// header row and body rows. Sections shorter than header + divider are
// reported as not renderable and must be skipped entirely.
func ParseTable(lines []string) (head []string, body [][]string, ok bool) {
	if len(lines) < 2 {
		return nil, nil, false
	}
	head = parseTableRow(lines[0])
	for _, line := range lines[2:] {
		body = append(body, parseTableRow(line))
	}
	return head, body, true
}

func parseTableRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	cells := strings.Split(trimmed, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// LineItems filters out any row whose first cell mentions "total cost";
// the total is always recomputed from the remaining rows.
func LineItems(body [][]string) [][]string {
	items := make([][]string, 0, len(body))
	for _, row := range body {
		if len(row) > 0 && strings.Contains(strings.ToLower(row[0]), "total cost") {
			continue
		}
		items = append(items, row)
	}
	return items
}

// Totals sums the second column of the line-item rows and derives the
// fixed-rate tax and final total.
func Totals(items [][]string) (subtotal, tax, total float64) {
	for _, row := range items {
		if len(row) > 1 {
			subtotal += moneyValue(row[1])
		}
	}
	tax = subtotal * TaxRate
	return subtotal, tax, subtotal + tax
}

// moneyValue strips everything but digits, dot and minus before parsing;
// unparseable cells count as zero.
func moneyValue(cell string) float64 {
	v, err := strconv.ParseFloat(moneyCleanRe.ReplaceAllString(cell, ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func FormatMoney(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
}

// FormatDate reformats a date-valued field to "Month Day, Year". Values
// that match no known layout pass through unchanged.
func FormatDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return trimmed
}
