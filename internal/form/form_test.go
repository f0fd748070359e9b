package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fibertrack/deployform/internal/models"
)

const today = "2024-05-01"

func newForm(rows []models.ReferenceRow) *Form {
	f := New(DefaultCatalog(), today)
	f.SetDataset(rows, 1)
	return f
}

func selectAll(f *Form, fdt, activity string) {
	f.SetField(FieldCity, "Al-Nasiriyah")
	f.SetField(FieldRing, "R1")
	f.SetField(FieldFdt, fdt)
	f.SetField(FieldActivity, activity)
}

func TestNew_InitialState(t *testing.T) {
	f := New(DefaultCatalog(), today)
	v := f.View()

	assert.Equal(t, today, v.Fields.Date)
	assert.Equal(t, models.FdtDistribution, v.FdtType)
	assert.Equal(t, "0", v.Fields.Remaining)
	assert.Nil(t, v.Match)
	assert.False(t, v.FilterActive)
	assert.Empty(t, v.Options.Ring)
}

func TestForm_MatchAutofillsQuantities(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")

	v := f.View()
	require.NotNil(t, v.Match)
	assert.Equal(t, "100", v.Fields.Boq)
	assert.Equal(t, "40", v.Fields.Completed)
	assert.Equal(t, "60", v.Fields.Remaining)
	assert.Len(t, v.Filtered, 1)
	assert.True(t, v.FilterActive)
}

func TestForm_RemainingIgnoresAutofilledValue(t *testing.T) {
	rows := []models.ReferenceRow{{
		City: "Al-Nasiriyah", Ring: "R1", Fdt: "3", Activity: "Poles",
		Boq: "100", Completed: "40", Remaining: "999",
	}}
	f := newForm(rows)
	selectAll(f, "3", "Poles")

	assert.Equal(t, "60", f.State().Fields.Remaining)
}

func TestForm_NonNumericCoercesToZero(t *testing.T) {
	f := newForm(nil)
	f.SetField(FieldBoq, "50")
	f.SetField(FieldCompleted, "abc")

	assert.Equal(t, "50", f.State().Fields.Remaining)
	// the typed text itself is kept
	assert.Equal(t, "abc", f.State().Fields.Completed)
}

func TestForm_RemainingTracksEveryEdit(t *testing.T) {
	f := newForm(nil)
	edits := []struct {
		field Field
		value string
		want  string
	}{
		{FieldBoq, "10", "10"},
		{FieldCompleted, "4", "6"},
		{FieldCompleted, "12.5", "-2.5"},
		{FieldBoq, "", "-12.5"},
		{FieldCompleted, "", "0"},
	}
	for _, e := range edits {
		f.SetField(e.field, e.value)
		assert.Equal(t, e.want, f.State().Fields.Remaining, "after %s=%q", e.field, e.value)
	}
}

func TestForm_RemainingNotEditable(t *testing.T) {
	f := newForm(nil)
	f.SetField(FieldBoq, "10")
	f.SetField(FieldRemaining, "3")

	assert.Equal(t, "10", f.State().Fields.Remaining)
	assert.False(t, FieldRemaining.Editable())
	assert.True(t, FieldBoq.Editable())
}

func TestForm_LosingMatchKeepsFields(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")
	f.SetField(FieldActivity, "HH Installation")

	v := f.View()
	assert.Nil(t, v.Match)
	assert.Equal(t, "100", v.Fields.Boq)
	assert.Equal(t, "40", v.Fields.Completed)
	assert.Equal(t, "60", v.Fields.Remaining)
}

func TestForm_UserEditsSurviveWhileMatchUnchanged(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")
	f.SetField(FieldCompleted, "55")
	f.SetField(FieldNotes, "late crew")

	assert.Equal(t, "55", f.State().Fields.Completed)
	assert.Equal(t, "45", f.State().Fields.Remaining)
}

func TestForm_NewMatchOverwritesEdits(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")
	f.SetField(FieldBoq, "7")

	f.SetField(FieldActivity, "Excavation")
	assert.Equal(t, "250", f.State().Fields.Boq)
	assert.Equal(t, "240", f.State().Fields.Remaining)
}

func TestForm_DatasetSwapRefillsSameRow(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")
	f.SetField(FieldCompleted, "1")

	updated := sampleRows()
	updated[0].Completed = "70"
	f.SetDataset(updated, 2)

	assert.Equal(t, "70", f.State().Fields.Completed)
	assert.Equal(t, "30", f.State().Fields.Remaining)
	assert.Equal(t, uint64(2), f.DatasetVersion())
}

func TestForm_CascadeClearsOnChange(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")

	f.SetField(FieldFdt, "4")
	assert.Equal(t, "", f.State().Fields.Activity)

	f.SetField(FieldActivity, "Poles")
	f.SetField(FieldRing, "R2")
	assert.Equal(t, "", f.State().Fields.Fdt)
	assert.Equal(t, "", f.State().Fields.Activity)

	f.SetField(FieldCity, "")
	v := f.View()
	assert.Equal(t, "", v.Fields.Ring)
	assert.Empty(t, v.Options.Ring)
	assert.Empty(t, v.Options.Fdt)
	assert.Empty(t, v.Options.Activity)
}

func TestForm_FeederToggle(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")

	f.SetFdtType(models.FdtFeeder)
	v := f.View()
	assert.Equal(t, "", v.Fields.Fdt)
	assert.Equal(t, "", v.Fields.Activity)
	assert.Equal(t, []string{"Feeder"}, v.Options.Fdt)

	f.SetField(FieldFdt, "Feeder")
	v = f.View()
	assert.Equal(t, []string{"Feeder HDPE Pipe"}, v.Options.Activity)

	f.SetField(FieldActivity, "Feeder HDPE Pipe")
	assert.Equal(t, "900", f.State().Fields.Remaining)

	f.SetFdtType(models.FdtType("bogus"))
	assert.Equal(t, models.FdtFeeder, f.State().FdtType)
}

func TestForm_ClearAndResetAfterSubmit(t *testing.T) {
	f := newForm(sampleRows())
	selectAll(f, "3", "Poles")
	f.SetField(FieldDate, "2024-04-20")
	f.SetField(FieldWorkType, models.WorkTypeNew)
	f.SetFdtType(models.FdtFeeder)

	f.ResetAfterSubmit()
	s := f.State()
	assert.Equal(t, "2024-04-20", s.Fields.Date)
	assert.Equal(t, models.FdtFeeder, s.FdtType)
	assert.Equal(t, "", s.Fields.City)
	assert.Equal(t, "", s.Fields.WorkType)
	assert.Equal(t, "0", s.Fields.Remaining)

	f.Clear("2024-05-02")
	s = f.State()
	assert.Equal(t, "2024-05-02", s.Fields.Date)
	assert.Equal(t, models.FdtDistribution, s.FdtType)
}

func TestForm_Draft(t *testing.T) {
	rows := sampleRows()
	rows[0].PrimaryBoq = "PB-7"
	f := newForm(rows)
	selectAll(f, "3", "Poles")
	f.SetField(FieldWorkType, models.WorkTypeRework)
	f.SetField(FieldCompleted, "x")

	e := f.Draft()
	assert.Equal(t, "Al-Nasiriyah", e.City)
	assert.Equal(t, models.WorkTypeRework, e.WorkType)
	assert.Equal(t, 100.0, e.Boq)
	assert.Equal(t, 0.0, e.Completed)
	assert.Equal(t, 100.0, e.Remaining)
	assert.Equal(t, "PB-7", e.PrimaryBoq)
	assert.Equal(t, today, e.Date)
}

func TestForm_RestoreKeepsSavedFigures(t *testing.T) {
	f := newForm(sampleRows())
	saved := State{
		Fields: Fields{
			City: "Al-Nasiriyah", Ring: "R1", Fdt: "3", Activity: "Poles",
			Boq: "100", Completed: "90", Date: "2024-04-30",
		},
		FdtType: "",
	}
	f.Restore(saved)

	s := f.State()
	assert.Equal(t, "90", s.Fields.Completed)
	assert.Equal(t, "10", s.Fields.Remaining)
	assert.Equal(t, models.FdtDistribution, s.FdtType)

	// an unrelated edit does not re-trigger the auto-fill
	f.SetField(FieldNotes, "checked")
	assert.Equal(t, "90", f.State().Fields.Completed)
}

func TestParseField(t *testing.T) {
	f, ok := ParseField("workType")
	assert.True(t, ok)
	assert.Equal(t, FieldWorkType, f)

	_, ok = ParseField("primaryBoq")
	assert.False(t, ok)
}
