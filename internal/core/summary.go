package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Color of the priority indicator dot.
type Color string

const (
	Red    Color = "red"
	Yellow Color = "yellow"
	Green  Color = "green"
	Gray   Color = "gray"
)

// ColorFor maps a raw priority label to its indicator color.
// Unrecognised labels are gray.
func ColorFor(priority string) Color {
	switch Priority(priority) {
	case High:
		return Red
	case Medium:
		return Yellow
	case Low:
		return Green
	default:
		return Gray
	}
}

// PriorityFilter selects which items the list shows.
type PriorityFilter string

// FilterAll shows every item.
const FilterAll PriorityFilter = "All"

// FilterOptions lists the filter values in picker order.
var FilterOptions = []PriorityFilter{FilterAll, PriorityFilter(Medium), PriorityFilter(High), PriorityFilter(Low)}

// ParsePriorityFilter returns FilterAll for blank or unknown values.
func ParsePriorityFilter(s string) PriorityFilter {
	s = strings.TrimSpace(s)
	if p := Priority(s); p.Valid() {
		return PriorityFilter(p)
	}
	return FilterAll
}

// Match reports whether item passes the filter.
func (f PriorityFilter) Match(item BudgetItem) bool {
	return f == FilterAll || Priority(f) == item.Priority
}

func (f PriorityFilter) String() string { return string(f) }

// Filter keeps the items matching f, preserving their relative order.
func Filter(items []BudgetItem, f PriorityFilter) []BudgetItem {
	if f == FilterAll || f == "" {
		return items
	}
	out := make([]BudgetItem, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Total sums the amounts of items. An empty slice totals zero.
func Total(items []BudgetItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

var (
	totalPrinter = message.NewPrinter(language.English)
	maxGrouped   = decimal.NewFromInt(math.MaxInt64)
)

// FormatTotal renders d with two fractional digits and thousands grouping,
// e.g. "1,180.00". Only the integer part goes through the printer, so cents
// stay exact at any magnitude. Totals past int64 are not grouped.
func FormatTotal(d decimal.Decimal) string {
	rounded := d.Round(2)
	abs := rounded.Abs()
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	fixed := abs.StringFixed(2)
	if abs.GreaterThan(maxGrouped) {
		return sign + fixed
	}
	_, cents, _ := strings.Cut(fixed, ".")
	return sign + totalPrinter.Sprint(number.Decimal(abs.IntPart())) + "." + cents
}
