package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fibertrack/deployform/internal/errors"
	"github.com/fibertrack/deployform/internal/form"
	"github.com/fibertrack/deployform/internal/logger"
	"github.com/fibertrack/deployform/internal/models"
	"github.com/fibertrack/deployform/internal/reference"
	"github.com/fibertrack/deployform/internal/repository"
)

// DatasetSource supplies the current reference dataset
type DatasetSource interface {
	Dataset() reference.Dataset
}

// FormView is the form snapshot served to clients
type FormView struct {
	form.View
	Total      int        `json:"total_records"`
	LastSynced *time.Time `json:"last_synced"`
}

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Entry    models.Entry `json:"entry"`
	Warnings []string     `json:"warnings,omitempty"`
	Form     FormView     `json:"form"`
}

// submission holds the fields that must be present before an entry is created
type submission struct {
	City     string `json:"city" validate:"required"`
	Ring     string `json:"ring" validate:"required"`
	Fdt      string `json:"fdt" validate:"required"`
	Activity string `json:"activity" validate:"required"`
	WorkType string `json:"workType" validate:"required,oneof=New Rework"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

// FormService owns the single shared form session. Every operation runs under
// one lock and stores the session afterwards.
type FormService struct {
	log      logger.Logger
	repo     repository.FormStateRepository
	refs     DatasetSource
	entries  EntryServicer
	validate *validator.Validate
	today    func() string

	mu   sync.Mutex
	form *form.Form
}

// NewFormService creates a new FormService with an empty form
func NewFormService(log logger.Logger, repo repository.FormStateRepository, catalog form.Catalog, refs DatasetSource, entries EntryServicer) *FormService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	s := &FormService{
		log:      log,
		repo:     repo,
		refs:     refs,
		entries:  entries,
		validate: v,
		today:    func() string { return time.Now().Format("2006-01-02") },
	}
	s.form = form.New(catalog, s.today())
	return s
}

// Load restores the persisted session, if any
func (s *FormService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDataset()

	raw, err := s.repo.LoadFormState(ctx)
	if err == repository.ErrNotFound {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to load form session")
	}

	var state form.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.log.Warn("Discarding unreadable form session", "error", err)
		return nil
	}
	s.form.Restore(state)
	s.log.Debug("Form session restored", "city", state.Fields.City, "activity", state.Fields.Activity)
	return nil
}

// refreshDataset hands a newer dataset to the form. It reports whether the
// form may have changed. Callers hold s.mu.
func (s *FormService) refreshDataset() bool {
	d := s.refs.Dataset()
	if d.Version == s.form.DatasetVersion() {
		return false
	}
	s.form.SetDataset(d.Rows, d.Version)
	return true
}

// save stores the session. A failed save leaves the in-memory session
// authoritative. Callers hold s.mu.
func (s *FormService) save(ctx context.Context) {
	data, err := json.Marshal(s.form.State())
	if err != nil {
		s.log.Error("Failed to encode form session", "error", err)
		return
	}
	if err := s.repo.SaveFormState(ctx, string(data)); err != nil {
		s.log.Error("Failed to save form session", "error", err)
	}
}

// view builds the client snapshot. Callers hold s.mu.
func (s *FormService) view() FormView {
	d := s.refs.Dataset()
	v := FormView{
		View:  s.form.View(),
		Total: d.Total(),
	}
	if d.Synced() {
		at := d.LastSynced
		v.LastSynced = &at
	}
	return v
}

// View returns the current form snapshot
func (s *FormService) View(ctx context.Context) FormView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshDataset() {
		s.save(ctx)
	}
	return s.view()
}

// SetField applies one field edit
func (s *FormService) SetField(ctx context.Context, name, value string) (*FormView, error) {
	field, ok := form.ParseField(name)
	if !ok {
		return nil, errors.Validationf("unknown field %q", name)
	}
	if !field.Editable() {
		return nil, ErrRemainingReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDataset()
	s.form.SetField(field, value)
	s.save(ctx)
	v := s.view()
	return &v, nil
}

// SetFdtType switches between distribution and feeder terminals
func (s *FormService) SetFdtType(ctx context.Context, fdtType string) (*FormView, error) {
	t := models.FdtType(fdtType)
	if !t.Valid() {
		return nil, errors.Validationf("fdt_type must be %q or %q", models.FdtDistribution, models.FdtFeeder)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDataset()
	s.form.SetFdtType(t)
	s.save(ctx)
	v := s.view()
	return &v, nil
}

// Clear empties the form and resets the date to today
func (s *FormService) Clear(ctx context.Context) (*FormView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDataset()
	s.form.Clear(s.today())
	s.save(ctx)
	v := s.view()
	return &v, nil
}

// Submit validates the form, creates an entry from it and resets the form,
// keeping the date
func (s *FormService) Submit(ctx context.Context) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDataset()
	fields := s.form.State().Fields
	if err := s.validateSubmission(fields); err != nil {
		return nil, err
	}

	created, err := s.entries.Create(ctx, s.form.Draft())
	if err != nil {
		return nil, err
	}

	s.form.ResetAfterSubmit()
	s.save(ctx)

	return &SubmitResult{
		Entry:    created.Entry,
		Warnings: created.Warnings,
		Form:     s.view(),
	}, nil
}

func (s *FormService) validateSubmission(f form.Fields) error {
	err := s.validate.Struct(submission{
		City:     strings.TrimSpace(f.City),
		Ring:     strings.TrimSpace(f.Ring),
		Fdt:      strings.TrimSpace(f.Fdt),
		Activity: strings.TrimSpace(f.Activity),
		WorkType: f.WorkType,
		Date:     f.Date,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Internal(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.Validation(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date like YYYY-MM-DD", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
