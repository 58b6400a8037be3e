package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	High   Priority = "High"
	Medium Priority = "Medium"
	Low    Priority = "Low"

	// DefaultPriority is assigned to items created without an explicit choice.
	DefaultPriority = Medium
)

const (
	Alimentation   Tag = "Alimentation"
	Services       Tag = "Services"
	Divertissement Tag = "Divertissement"
	Loisirs        Tag = "Loisirs"
	Epicerie       Tag = "Épicerie"
	Transport      Tag = "Transport"
	Factures       Tag = "Factures"
	Cadeaux        Tag = "Cadeaux"
	Sante          Tag = "Santé"
	Moto           Tag = "Moto"
	Sport          Tag = "Sport"
	Amis           Tag = "Amis"
)

// DefaultImageURL replaces an empty image URL when an item is submitted.
// The image resolver recognises it and renders the placeholder without a fetch.
const DefaultImageURL = "placeholder:default"

const maxNameLength = 200

type (
	// Priority is the urgency label of a budget item.
	Priority string

	// Tag is one of the fixed expense categories.
	Tag string

	// Date is a calendar date without time of day, stored as UTC midnight.
	Date struct {
		time.Time
	}

	// BudgetItem is one recorded expense.
	BudgetItem struct {
		ID       uuid.UUID
		Name     string
		Amount   decimal.Decimal
		Tags     []Tag
		Date     Date
		Priority Priority
		ImageURL string
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = fmt.Errorf("name too long (max %d characters)", maxNameLength)
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidTag      = errors.New("invalid tag")
	ErrInvalidDate     = errors.New("invalid date")
)

// Priorities lists the priority values in picker order.
var Priorities = []Priority{High, Medium, Low}

// Tags lists the available categories in picker order.
var Tags = []Tag{
	Alimentation, Services, Divertissement, Loisirs, Epicerie, Transport,
	Factures, Cadeaux, Sante, Moto, Sport, Amis,
}

// ParsePriority accepts exactly one of High, Medium or Low.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.TrimSpace(s))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case High, Medium, Low:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

// Color returns the indicator color for the priority.
func (p Priority) Color() Color { return ColorFor(string(p)) }

// ParseTag accepts only members of Tags.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, s)
	}
	return t, nil
}

func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

func (t Tag) String() string { return string(t) }

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in YYYY-MM-DD format, as sent by date inputs.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(time.DateOnly)
}

// String returns the display form dd/MM/yyyy.
func (d Date) String() string {
	return d.Format("02/01/2006")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NormalizeImageURL substitutes DefaultImageURL for a blank URL.
func NormalizeImageURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultImageURL
	}
	return s
}

// HasImage reports whether the item points to something other than the placeholder.
func (b BudgetItem) HasImage() bool {
	return b.ImageURL != "" && b.ImageURL != DefaultImageURL
}

func (b BudgetItem) Validate() error {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > maxNameLength {
		return ErrNameTooLong
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Priority.Valid() {
		return ErrInvalidPriority
	}
	for _, t := range b.Tags {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidTag, t)
		}
	}
	return b.Date.Validate()
}

// Clone returns a copy that shares no slices with b.
func (b BudgetItem) Clone() BudgetItem {
	if b.Tags != nil {
		b.Tags = append([]Tag(nil), b.Tags...)
	}
	return b
}
