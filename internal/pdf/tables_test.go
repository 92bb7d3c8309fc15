package pdf

import (
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	lines := []string{
		"| Items | Cost |",
		"|---|---|",
		"| Labor | $100.00 |",
		"| Materials | $50.00 |",
		"| Total Cost | $150.00 |",
	}

	head, body, ok := ParseTable(lines)
	if !ok {
		t.Fatalf("expected parseable table")
	}
	if !reflect.DeepEqual(head, []string{"Items", "Cost"}) {
		t.Fatalf("head = %v", head)
	}
	if len(body) != 3 {
		t.Fatalf("body = %v", body)
	}

	items := LineItems(body)
	if len(items) != 2 {
		t.Fatalf("expected total-cost row excluded, got %v", items)
	}
}

func TestParseTableTooShortIsSkipped(t *testing.T) {
	for _, lines := range [][]string{nil, {}, {"| Items | Cost |"}} {
		if _, _, ok := ParseTable(lines); ok {
			t.Fatalf("expected table %v to be skipped", lines)
		}
	}
}

func TestTotals(t *testing.T) {
	items := [][]string{
		{"Labor", "$100.00"},
		{"Materials", "$50.00"},
	}

	subtotal, tax, total := Totals(items)

	if FormatMoney(subtotal) != "$150.00" {
		t.Fatalf("subtotal = %s", FormatMoney(subtotal))
	}
	if FormatMoney(tax) != "$7.50" {
		t.Fatalf("tax = %s", FormatMoney(tax))
	}
	if FormatMoney(total) != "$157.50" {
		t.Fatalf("total = %s", FormatMoney(total))
	}
}

func TestTotalsNonNumericCellsCountAsZero(t *testing.T) {
	subtotal, _, _ := Totals([][]string{
		{"Labor", "TBD"},
		{"Materials", "$25.50"},
		{"Short row"},
	})
	if FormatMoney(subtotal) != "$25.50" {
		t.Fatalf("subtotal = %s", FormatMoney(subtotal))
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2025-09-15":         "September 15, 2025",
		"09/15/2025":         "September 15, 2025",
		"September 15, 2025": "September 15, 2025",
		"not a date":         "not a date",
		"":                   "",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Fatalf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}
