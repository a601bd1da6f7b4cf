package logbook

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMonthLocked     = errors.New("this month is locked until the previous month is submitted")
	ErrMonthOutOfRange = errors.New("month is outside the placement timeline")
	ErrNoFormOpen      = errors.New("no week entry is being edited")
	ErrNotLoaded       = errors.New("editor not loaded")
)

// EntryInput is what the student types into the week entry form.
type EntryInput struct {
	Activities        string
	TechnicalSkills   string
	SoftSkills        string
	TrainingsReceived string
}

// EntryForm is the open week entry modal.
type EntryForm struct {
	WeekNumber int
	Initial    WeekEntry
}

// Editor is the student logbook editor. It is not safe for concurrent use.
type Editor struct {
	svc       *Service
	timelines TimelineSource
	confirm   Confirmer
	studentID string

	loaded   bool
	loading  bool
	history  []Summary
	timeline Timeline
	unlocked int

	month   int
	year    int
	current Logbook
	exists  bool
	form    *EntryForm
}

func NewEditor(svc *Service, timelines TimelineSource, confirm Confirmer, studentID string) *Editor {
	return &Editor{svc: svc, timelines: timelines, confirm: confirm, studentID: studentID}
}

// Load fetches history and the placement timeline concurrently, computes the
// unlocked month and opens the default month.
func (e *Editor) Load(ctx context.Context) error {
	e.loading = true
	defer func() { e.loading = false }()

	var history []Summary
	var timeline Timeline
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		history, err = e.svc.History(gctx, e.studentID)
		return err
	})
	g.Go(func() (err error) {
		timeline, err = e.timelines.Timeline(gctx, e.studentID)
		return errors.Wrap(err, "fetching placement timeline")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	e.timeline = timeline
	e.setHistory(history)
	e.loaded = true

	month, year := DefaultView(history)
	if len(history) == 0 {
		year = timeline.YearOf(month)
	}
	return e.open(ctx, month, year)
}

// Refresh re-runs the history fetch and unlock computation, then reloads the current month.
func (e *Editor) Refresh(ctx context.Context) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	e.loading = true
	defer func() { e.loading = false }()

	history, err := e.svc.History(ctx, e.studentID)
	if err != nil {
		return err
	}
	e.setHistory(history)
	return e.open(ctx, e.month, e.year)
}

func (e *Editor) setHistory(history []Summary) {
	e.history = history
	e.unlocked = ComputeUnlockedMonth(history)
}

func (e *Editor) open(ctx context.Context, month, year int) error {
	lb, exists, err := e.svc.Lookup(ctx, e.studentID, month, year)
	if err != nil {
		return err
	}
	e.month, e.year = month, year
	e.current, e.exists = lb, exists
	e.form = nil
	return nil
}

// SelectMonth switches the editor to another month of the timeline.
func (e *Editor) SelectMonth(ctx context.Context, month int) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	if month < 1 || (e.timeline.TotalMonths > 0 && month > e.timeline.TotalMonths) {
		return ErrMonthOutOfRange
	}
	if IsLocked(e.history, month) {
		return ErrMonthLocked
	}

	e.loading = true
	defer func() { e.loading = false }()

	year := e.timeline.YearOf(month)
	for _, s := range e.history {
		if s.Month == month {
			year = s.Year
			break
		}
	}
	return e.open(ctx, month, year)
}

// Editable reports whether week entries of the current month may be changed.
func (e *Editor) Editable() bool {
	if !e.loaded || IsLocked(e.history, e.month) {
		return false
	}
	if !e.exists {
		return true
	}
	return e.current.Status.Editable()
}

// OpenEntry opens the entry form for week n, prefilled with any saved entry.
func (e *Editor) OpenEntry(week int) (*EntryForm, error) {
	if week < 1 || week > WeeksPerMonth {
		return nil, errors.Errorf("week must be between 1 and %d", WeeksPerMonth)
	}
	if !e.Editable() {
		return nil, ErrNotEditable
	}
	form := &EntryForm{WeekNumber: week}
	if e.exists {
		form.Initial, _ = e.current.Week(week)
	}
	form.Initial.WeekNumber = week
	e.form = form
	return form, nil
}

// CloseEntry dismisses the entry form without saving.
func (e *Editor) CloseEntry() { e.form = nil }

// SaveWeek saves the open form. On any error the form stays open and the
// current logbook is left untouched; on success the server's logbook replaces
// it and the form closes.
func (e *Editor) SaveWeek(ctx context.Context, in EntryInput) error {
	if e.form == nil {
		return ErrNoFormOpen
	}
	if !e.Editable() {
		return ErrNotEditable
	}
	draft := EntryDraft{
		StudentID:         e.studentID,
		Month:             e.month,
		Year:              e.year,
		WeekNumber:        e.form.WeekNumber,
		Activities:        in.Activities,
		TechnicalSkills:   in.TechnicalSkills,
		SoftSkills:        in.SoftSkills,
		TrainingsReceived: in.TrainingsReceived,
	}

	e.loading = true
	defer func() { e.loading = false }()

	lb, err := e.svc.SaveEntry(ctx, draft)
	if err != nil {
		return err
	}
	e.current, e.exists = lb, true
	e.form = nil
	return nil
}

// SubmitPrompt is the confirmation text shown before submitting the current month.
func (e *Editor) SubmitPrompt() string {
	filled := e.current.FilledWeeks()
	if filled < WeeksPerMonth {
		return fmt.Sprintf("Only %d of %d weeks are filled. Submit month %d for approval anyway?", filled, WeeksPerMonth, e.month)
	}
	return fmt.Sprintf("Submit month %d for approval? You will not be able to edit it afterwards.", e.month)
}

// CanSubmit reports whether the submit control is enabled.
func (e *Editor) CanSubmit() bool {
	return e.loaded && e.exists && e.current.ID != "" && Can(e.current.Status, EventSubmit) && !IsLocked(e.history, e.month)
}

// Submit asks for confirmation and moves the current month to Pending. It
// returns false without error when the user declines. On success history and
// unlock state are recomputed from the server.
func (e *Editor) Submit(ctx context.Context) (bool, error) {
	if !e.loaded {
		return false, ErrNotLoaded
	}
	if !e.exists || e.current.ID == "" {
		return false, ErrNothingToSubmit
	}
	if _, err := Transition(e.current.Status, EventSubmit); err != nil {
		return false, err
	}
	if e.confirm != nil && !e.confirm.Confirm(e.SubmitPrompt()) {
		return false, nil
	}

	e.loading = true
	if _, err := e.svc.Submit(ctx, e.current); err != nil {
		e.loading = false
		return false, err
	}
	e.loading = false
	return true, e.Refresh(ctx)
}

func (e *Editor) Loading() bool            { return e.loading }
func (e *Editor) Loaded() bool             { return e.loaded }
func (e *Editor) StudentID() string        { return e.studentID }
func (e *Editor) Month() int               { return e.month }
func (e *Editor) Year() int                { return e.year }
func (e *Editor) Unlocked() int            { return e.unlocked }
func (e *Editor) Timeline() Timeline       { return e.timeline }
func (e *Editor) History() []Summary       { return e.history }
func (e *Editor) Form() *EntryForm         { return e.form }
func (e *Editor) Current() (Logbook, bool) { return e.current, e.exists }
func (e *Editor) Slots() []MonthSlot       { return MonthSlots(e.history, e.timeline) }
