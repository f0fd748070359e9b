package form

import (
	"github.com/fibertrack/deployform/internal/models"
)

// Field names an editable form field
type Field string

const (
	FieldCity      Field = "city"
	FieldRing      Field = "ring"
	FieldWorkType  Field = "workType"
	FieldFdt       Field = "fdt"
	FieldActivity  Field = "activity"
	FieldBoq       Field = "boq"
	FieldCompleted Field = "completed"
	FieldRemaining Field = "remaining"
	FieldDate      Field = "date"
	FieldNotes     Field = "notes"
)

var knownFields = map[Field]bool{
	FieldCity: true, FieldRing: true, FieldWorkType: true, FieldFdt: true,
	FieldActivity: true, FieldBoq: true, FieldCompleted: true,
	FieldRemaining: true, FieldDate: true, FieldNotes: true,
}

// ParseField maps a wire name onto a Field
func ParseField(name string) (Field, bool) {
	f := Field(name)
	return f, knownFields[f]
}

// Editable reports whether a user may set the field directly
func (f Field) Editable() bool {
	return knownFields[f] && f != FieldRemaining
}

// Fields is the in-progress entry as typed into the form
type Fields struct {
	City      string `json:"city"`
	Ring      string `json:"ring"`
	WorkType  string `json:"workType"`
	Fdt       string `json:"fdt"`
	Activity  string `json:"activity"`
	Boq       string `json:"boq"`
	Completed string `json:"completed"`
	Remaining string `json:"remaining"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
}

// State is everything needed to rebuild a form session
type State struct {
	Fields  Fields         `json:"fields"`
	FdtType models.FdtType `json:"fdtType"`
}

// View is a read-only snapshot of the form and everything derived from it
type View struct {
	Fields       Fields                `json:"fields"`
	FdtType      models.FdtType        `json:"fdtType"`
	Options      Options               `json:"options"`
	Match        *models.ReferenceRow  `json:"match"`
	Filtered     []models.ReferenceRow `json:"filtered"`
	FilterActive bool                  `json:"filterActive"`
}

// matchKey identifies a match result. A dataset swap changes the version,
// so the same logical row in a new dataset counts as a new match.
type matchKey struct {
	version uint64
	index   int
	ok      bool
}

// Form owns one form session. The selection and the dataset are its only
// inputs; options, match, remaining and projection are derived after every
// mutation. A Form is not safe for concurrent use.
type Form struct {
	catalog Catalog
	state   State
	rows    []models.ReferenceRow
	version uint64
	last    matchKey
}

// New returns an empty form dated today
func New(catalog Catalog, today string) *Form {
	f := &Form{catalog: catalog, last: matchKey{index: -1}}
	f.state = emptyState(today)
	f.settle()
	return f
}

func emptyState(today string) State {
	return State{
		Fields:  Fields{Date: today},
		FdtType: models.FdtDistribution,
	}
}

// Restore replaces the session with a persisted state. The current match is
// recorded without auto-filling so restored figures are kept as saved.
func (f *Form) Restore(s State) {
	if !s.FdtType.Valid() {
		s.FdtType = models.FdtDistribution
	}
	f.state = s
	_, idx, ok := Match(f.Selection(), f.rows)
	f.last = matchKey{version: f.version, index: idx, ok: ok}
	f.recompute()
}

// State returns the persistable session state
func (f *Form) State() State {
	return f.state
}

// Selection returns the cascade part of the form
func (f *Form) Selection() models.Selection {
	return models.Selection{
		City:     f.state.Fields.City,
		Ring:     f.state.Fields.Ring,
		FdtType:  f.state.FdtType,
		Fdt:      f.state.Fields.Fdt,
		Activity: f.state.Fields.Activity,
	}
}

func (f *Form) applySelection(sel models.Selection) {
	f.state.Fields.City = sel.City
	f.state.Fields.Ring = sel.Ring
	f.state.FdtType = sel.FdtType
	f.state.Fields.Fdt = sel.Fdt
	f.state.Fields.Activity = sel.Activity
}

// SetField applies one user edit. Edits to remaining and to unknown fields
// are ignored.
func (f *Form) SetField(field Field, value string) {
	switch field {
	case FieldCity:
		f.applySelection(Select(f.Selection(), LevelCity, value))
	case FieldRing:
		f.applySelection(Select(f.Selection(), LevelRing, value))
	case FieldFdt:
		f.applySelection(Select(f.Selection(), LevelFdt, value))
	case FieldActivity:
		f.applySelection(Select(f.Selection(), LevelActivity, value))
	case FieldWorkType:
		f.state.Fields.WorkType = value
	case FieldBoq:
		f.state.Fields.Boq = value
	case FieldCompleted:
		f.state.Fields.Completed = value
	case FieldDate:
		f.state.Fields.Date = value
	case FieldNotes:
		f.state.Fields.Notes = value
	default:
		return
	}
	f.settle()
}

// SetFdtType switches the terminal type
func (f *Form) SetFdtType(t models.FdtType) {
	if !t.Valid() {
		return
	}
	f.applySelection(SelectFdtType(f.Selection(), t))
	f.settle()
}

// SetDataset installs a new reference dataset. version must change whenever
// the rows do.
func (f *Form) SetDataset(rows []models.ReferenceRow, version uint64) {
	f.rows = rows
	f.version = version
	f.settle()
}

// DatasetVersion returns the version of the installed dataset
func (f *Form) DatasetVersion() uint64 {
	return f.version
}

// Clear empties the form, resets the date to today and the terminal type to
// distribution
func (f *Form) Clear(today string) {
	f.state = emptyState(today)
	f.settle()
}

// ResetAfterSubmit empties the form but keeps the date and terminal type
func (f *Form) ResetAfterSubmit() {
	f.state = State{
		Fields:  Fields{Date: f.state.Fields.Date},
		FdtType: f.state.FdtType,
	}
	f.settle()
}

// Draft converts the form into an unsaved entry with numbers coerced
func (f *Form) Draft() models.Entry {
	fl := f.state.Fields
	e := models.Entry{
		City:      fl.City,
		Ring:      fl.Ring,
		WorkType:  fl.WorkType,
		Fdt:       fl.Fdt,
		Activity:  fl.Activity,
		Boq:       Numeric(fl.Boq),
		Completed: Numeric(fl.Completed),
		Remaining: Numeric(fl.Remaining),
		Date:      fl.Date,
		Notes:     fl.Notes,
	}
	if row, _, ok := Match(f.Selection(), f.rows); ok {
		e.PrimaryBoq = row.PrimaryBoq
	}
	return e
}

// View returns a snapshot of the form with every derived value
func (f *Form) View() View {
	sel := f.Selection()
	v := View{
		Fields:       f.state.Fields,
		FdtType:      f.state.FdtType,
		Options:      f.catalog.AllOptions(sel),
		Filtered:     Project(sel, f.rows),
		FilterActive: FilterActive(sel),
	}
	if row, _, ok := Match(sel, f.rows); ok {
		v.Match = &row
	}
	return v
}

// settle runs the derivations in dependency order: match, auto-fill on a new
// match, then remaining.
func (f *Form) settle() {
	row, idx, ok := Match(f.Selection(), f.rows)
	key := matchKey{version: f.version, index: idx, ok: ok}
	if ok && key != f.last {
		f.state.Fields.Boq = row.Boq
		f.state.Fields.Completed = row.Completed
		f.state.Fields.Remaining = row.Remaining
	}
	f.last = key
	f.recompute()
}

func (f *Form) recompute() {
	fl := &f.state.Fields
	fl.Remaining = FormatNumber(Numeric(fl.Boq) - Numeric(fl.Completed))
}
