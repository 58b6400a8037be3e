package http

import (
	"net/url"

	"budget/internal/core"
	"budget/internal/forms"

	"github.com/google/uuid"
)

// FilterOption is one entry of the priority picker.
type FilterOption struct {
	Value    string
	Selected bool
}

// ListRow is one rendered budget item. Index is the position in the full,
// unfiltered list; reorder and delete actions address items by it.
type ListRow struct {
	ID       uuid.UUID
	Index    int
	Name     string
	Date     string
	Tags     []string
	Amount   string
	Priority string
	Color    core.Color
	HasImage bool
	ImageURL string

	CanMoveUp   bool
	CanMoveDown bool
	MoveUpTo    int
	MoveDownTo  int
}

// ListModel backs the list page.
type ListModel struct {
	Filter  string
	Filters []FilterOption
	Rows    []ListRow
	Total   string
	Self    string // current URL, used as the return target of row actions
}

// buildListModel filters items and computes the footer total over the
// visible rows only.
func buildListModel(items []core.BudgetItem, filter core.PriorityFilter) ListModel {
	m := ListModel{
		Filter: filter.String(),
		Self:   "/",
	}
	if filter != core.FilterAll {
		m.Self = "/?" + url.Values{"priority": {filter.String()}}.Encode()
	}
	for _, opt := range core.FilterOptions {
		m.Filters = append(m.Filters, FilterOption{Value: opt.String(), Selected: opt == filter})
	}

	last := len(items) - 1
	visible := make([]core.BudgetItem, 0, len(items))
	for i, it := range items {
		if !filter.Match(it) {
			continue
		}
		visible = append(visible, it)
		m.Rows = append(m.Rows, ListRow{
			ID:          it.ID,
			Index:       i,
			Name:        it.Name,
			Date:        it.Date.String(),
			Tags:        tagLabels(it.Tags),
			Amount:      core.FormatAmountWithCurrency(it.Amount),
			Priority:    it.Priority.String(),
			Color:       core.ColorFor(it.Priority.String()),
			HasImage:    it.HasImage(),
			ImageURL:    it.ImageURL,
			CanMoveUp:   i > 0,
			CanMoveDown: i < last,
			MoveUpTo:    i - 1,
			MoveDownTo:  i + 2,
		})
	}
	m.Total = core.FormatTotal(core.Total(visible))
	return m
}

// DetailModel backs the detail page.
type DetailModel struct {
	ID       uuid.UUID
	Name     string
	ImageURL string
	Amount   string
	Priority string
	Color    core.Color
	Tags     []string
	Date     string
}

func buildDetailModel(it core.BudgetItem) DetailModel {
	return DetailModel{
		ID:       it.ID,
		Name:     it.Name,
		ImageURL: it.ImageURL,
		Amount:   core.FormatAmountWithCurrency(it.Amount),
		Priority: it.Priority.String(),
		Color:    core.ColorFor(it.Priority.String()),
		Tags:     tagLabels(it.Tags),
		Date:     it.Date.String(),
	}
}

// FormModel backs the add and edit forms.
type FormModel struct {
	Title       string
	SubmitLabel string
	Action      string
	Session     uuid.UUID
	Draft       forms.Draft
	Errors      forms.FieldErrors
	General     string // error not tied to one field
	CloseNext   string
	Tags        []string
	Priorities  []string
	CanGenerate bool
}

func buildFormModel(session uuid.UUID, d forms.Draft, errs forms.FieldErrors) FormModel {
	m := FormModel{
		Session:    session,
		Draft:      d,
		Errors:     errs,
		Tags:       tagLabels(core.Tags),
		Priorities: make([]string, 0, len(core.Priorities)),
	}
	for _, p := range core.Priorities {
		m.Priorities = append(m.Priorities, p.String())
	}
	switch d.Mode {
	case forms.ModeEdit:
		m.Title = "Modifier la dépense"
		m.SubmitLabel = "Enregistrer"
		m.Action = "/items/" + d.ItemID.String()
		m.CloseNext = "/items/" + d.ItemID.String()
	default:
		m.Title = "Nouvelle dépense"
		m.SubmitLabel = "Ajouter"
		m.Action = "/items"
		m.CloseNext = "/"
		m.CanGenerate = true
	}
	return m
}

func tagLabels(tags []core.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
