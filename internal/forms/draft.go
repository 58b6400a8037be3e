// Package forms holds the state of the add and edit forms between requests
// and turns submitted input into budget items.
package forms

import (
	"errors"
	"net/url"
	"strings"

	"budget/internal/core"

	"github.com/google/uuid"
)

// Form field names, shared with the templates.
const (
	FieldName     = "name"
	FieldAmount   = "amount"
	FieldImageURL = "image_url"
	FieldTag      = "tag"
	FieldPriority = "priority"
	FieldDate     = "date"
)

var fields = []string{FieldName, FieldAmount, FieldImageURL, FieldTag, FieldPriority, FieldDate}

// Mode tells whether a draft creates a new item or edits an existing one.
type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Draft is the raw, unvalidated content of a form.
type Draft struct {
	Mode     Mode
	ItemID   uuid.UUID // edit target, nil when adding
	Name     string
	Amount   string
	ImageURL string
	Tag      string
	Priority string
	Date     string
}

// FieldErrors maps a field name to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) add(field, msg string) { f[field] = msg }

// Err returns nil when there are no errors.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return ErrInvalidDraft
}

var ErrInvalidDraft = errors.New("invalid form input")

// NewAddDraft returns the defaults of the add form.
func NewAddDraft(today core.Date) Draft {
	return Draft{
		Mode:     ModeAdd,
		Priority: string(core.DefaultPriority),
		Date:     today.ISO(),
	}
}

// NewEditDraft prefills the edit form from item.
func NewEditDraft(item core.BudgetItem) Draft {
	d := Draft{
		Mode:     ModeEdit,
		ItemID:   item.ID,
		Name:     item.Name,
		Amount:   core.FormatAmount(item.Amount),
		Priority: string(item.Priority),
		Date:     item.Date.ISO(),
	}
	if item.HasImage() {
		d.ImageURL = item.ImageURL
	}
	if len(item.Tags) > 0 {
		d.Tag = string(item.Tags[0])
	}
	return d
}

// Bind copies the form fields present in values into the draft.
// Absent fields keep their current value.
func (d *Draft) Bind(values url.Values) {
	for _, f := range fields {
		if _, ok := values[f]; !ok {
			continue
		}
		v := values.Get(f)
		switch f {
		case FieldName:
			d.Name = v
		case FieldAmount:
			d.Amount = v
		case FieldImageURL:
			d.ImageURL = v
		case FieldTag:
			d.Tag = v
		case FieldPriority:
			d.Priority = v
		case FieldDate:
			d.Date = v
		}
	}
}

// Build validates the draft and produces the item it describes. The id is
// the edit target, or nil for a new item. A blank image URL becomes the
// placeholder sentinel and the selected tag becomes a one-element tag list.
func (d Draft) Build() (core.BudgetItem, FieldErrors) {
	errs := FieldErrors{}
	item := core.BudgetItem{
		ID:       d.ItemID,
		Name:     strings.TrimSpace(d.Name),
		ImageURL: core.NormalizeImageURL(d.ImageURL),
	}

	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		errs.add(FieldAmount, "Montant invalide")
	}
	item.Amount = amount

	if item.Name == "" {
		errs.add(FieldName, "Le nom est obligatoire")
	} else if err := item.Validate(); errors.Is(err, core.ErrNameTooLong) {
		errs.add(FieldName, "Nom trop long")
	}

	if strings.TrimSpace(d.Tag) != "" {
		tag, err := core.ParseTag(d.Tag)
		if err != nil {
			errs.add(FieldTag, "Tag inconnu")
		} else {
			item.Tags = []core.Tag{tag}
		}
	}

	item.Priority = core.DefaultPriority
	if strings.TrimSpace(d.Priority) != "" {
		p, err := core.ParsePriority(d.Priority)
		if err != nil {
			errs.add(FieldPriority, "Priorité inconnue")
		} else {
			item.Priority = p
		}
	}

	item.Date = core.Today()
	if strings.TrimSpace(d.Date) != "" {
		date, err := core.ParseDate(d.Date)
		if err != nil {
			errs.add(FieldDate, "Date invalide")
		} else {
			item.Date = date
		}
	}

	if len(errs) > 0 {
		return core.BudgetItem{}, errs
	}
	return item, nil
}
