package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func item(name string, amount int64, p Priority) BudgetItem {
	return BudgetItem{Name: name, Amount: decimal.NewFromInt(amount), Priority: p, Date: NewDate(2024, 1, 1)}
}

func names(items []BudgetItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestColorFor(t *testing.T) {
	cases := map[string]Color{"High": Red, "Medium": Yellow, "Low": Green, "": Gray, "urgent": Gray}
	for in, want := range cases {
		if got := ColorFor(in); got != want {
			t.Fatalf("ColorFor(%q) = %s, want %s", in, got, want)
		}
	}
	if High.Color() != Red {
		t.Fatalf("Priority.Color should use ColorFor")
	}
}

func TestParsePriorityFilter(t *testing.T) {
	if ParsePriorityFilter("High") != PriorityFilter(High) {
		t.Fatalf("expected High filter")
	}
	for _, s := range []string{"", "All", "bogus"} {
		if ParsePriorityFilter(s) != FilterAll {
			t.Fatalf("%q should map to All", s)
		}
	}
}

func TestFilterIsStable(t *testing.T) {
	items := []BudgetItem{
		item("a", 1, Low), item("b", 2, High), item("c", 3, Low), item("d", 4, Medium), item("e", 5, Low),
	}

	got := names(Filter(items, PriorityFilter(Low)))
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	for _, it := range Filter(items, PriorityFilter(High)) {
		if it.Priority != High {
			t.Fatalf("filter leaked %v", it)
		}
	}
	if len(Filter(items, FilterAll)) != len(items) {
		t.Fatalf("All must return the full set")
	}
}

func TestTotal(t *testing.T) {
	if got := FormatAmount(Total(nil)); got != "0.00" {
		t.Fatalf("empty total = %q", got)
	}
	if got := FormatTotal(Total(nil)); got != "0.00" {
		t.Fatalf("empty display total = %q", got)
	}

	items := []BudgetItem{item("Épicerie", 50, Medium), item("Factures", 100, High)}
	if got := FormatTotal(Total(Filter(items, PriorityFilter(High)))); got != "100.00" {
		t.Fatalf("High total = %q", got)
	}
	if got := FormatTotal(Total(Filter(items, FilterAll))); got != "150.00" {
		t.Fatalf("All total = %q", got)
	}
	if got := FormatTotal(Total(Filter(items, PriorityFilter(Low)))); got != "0.00" {
		t.Fatalf("Low total = %q", got)
	}
}

func TestFormatTotalGroupsThousands(t *testing.T) {
	if got := FormatTotal(Total(Seed())); got != "1,180.00" {
		t.Fatalf("seed total = %q", got)
	}
}

func TestFormatTotalKeepsCents(t *testing.T) {
	cases := map[string]string{
		"0":                       "0.00",
		"0.05":                    "0.05",
		"999.99":                  "999.99",
		"1000":                    "1,000.00",
		"1234567890123456.78":     "1,234,567,890,123,456.78",
		"9007199254740993.01":     "9,007,199,254,740,993.01",
		"12345678901234567890.12": "12345678901234567890.12",
		"-1500.5":                 "-1,500.50",
	}
	for in, want := range cases {
		if got := FormatTotal(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatTotal(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestTotalOfCentAmountsMatchesRows(t *testing.T) {
	var items []BudgetItem
	for _, s := range []string{"0.01", "0.01", "10.10"} {
		amount, err := ParseAmount(s)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", s, err)
		}
		items = append(items, BudgetItem{Name: s, Amount: amount, Priority: Low})
	}
	if got := FormatTotal(Total(items)); got != "10.12" {
		t.Fatalf("total = %q, want 10.12", got)
	}
}
