package logbook

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
)

var (
	ErrNothingToSubmit = errors.New("save at least one week before submitting the month")
	ErrNotPending      = errors.New("only pending logbooks can be verified")
	ErrNotEditable     = errors.New("this month can no longer be edited")
)

type (
	// Gateway is the remote API as seen by the logbook workflow.
	Gateway interface {
		GetLogbook(ctx context.Context, studentID string, month, year int) (Logbook, bool, error)
		SaveEntry(ctx context.Context, draft EntryDraft) (Logbook, error)
		SubmitLogbook(ctx context.Context, logbookID string) (Logbook, error)
		VerifyLogbook(ctx context.Context, logbookID string, req VerifyRequest) (Logbook, error)
		UploadSigned(ctx context.Context, logbookID string, file document.Blob) (Logbook, error)
		DownloadSigned(ctx context.Context, logbookID string) (document.Blob, error)
		DownloadConsolidated(ctx context.Context, studentID string) (document.Blob, error)
		History(ctx context.Context, studentID string) ([]Summary, error)
		PendingLogbooks(ctx context.Context) ([]Logbook, error)
	}

	// TimelineSource resolves the placement timeline bounding a student's logbooks.
	TimelineSource interface {
		Timeline(ctx context.Context, studentID string) (Timeline, error)
	}

	// Confirmer asks the user a yes/no question before an irreversible action.
	Confirmer interface {
		Confirm(prompt string) bool
	}

	ConfirmFunc func(prompt string) bool

	Service struct {
		gw        Gateway
		validator *core.Validator
	}
)

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

func NewService(gw Gateway, validator *core.Validator) *Service {
	return &Service{gw: gw, validator: validator}
}

// Lookup fetches one month; exists is false when the student has not saved anything for it yet.
func (svc *Service) Lookup(ctx context.Context, studentID string, month, year int) (Logbook, bool, error) {
	lb, exists, err := svc.gw.GetLogbook(ctx, studentID, month, year)
	if err != nil {
		return Logbook{}, false, errors.Wrap(err, "fetching logbook")
	}
	return lb, exists, nil
}

// History returns the student's month summaries ordered by year then month.
func (svc *Service) History(ctx context.Context, studentID string) ([]Summary, error) {
	history, err := svc.gw.History(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching logbook history")
	}
	SortHistory(history)
	return history, nil
}

// SaveEntry validates the draft and upserts it. An invalid draft never reaches the API.
func (svc *Service) SaveEntry(ctx context.Context, draft EntryDraft) (Logbook, error) {
	if err := draft.Validate(svc.validator); err != nil {
		return Logbook{}, err
	}
	lb, err := svc.gw.SaveEntry(ctx, draft)
	if err != nil {
		return Logbook{}, errors.Wrap(err, "saving week entry")
	}
	return lb, nil
}

// Submit moves a Draft or Rejected month to Pending.
func (svc *Service) Submit(ctx context.Context, lb Logbook) (Logbook, error) {
	if lb.ID == "" {
		return Logbook{}, ErrNothingToSubmit
	}
	if _, err := Transition(lb.Status, EventSubmit); err != nil {
		return Logbook{}, err
	}
	updated, err := svc.gw.SubmitLogbook(ctx, lb.ID)
	if err != nil {
		return Logbook{}, errors.Wrap(err, "submitting logbook")
	}
	return updated, nil
}

// Verify approves or rejects a Pending month.
func (svc *Service) Verify(ctx context.Context, lb Logbook, req VerifyRequest) (Logbook, error) {
	if err := req.Validate(svc.validator); err != nil {
		return Logbook{}, err
	}
	ev, _ := req.Action.Event()
	if _, err := Transition(lb.Status, ev); err != nil {
		return Logbook{}, err
	}
	updated, err := svc.gw.VerifyLogbook(ctx, lb.ID, req)
	if err != nil {
		return Logbook{}, errors.Wrap(err, "verifying logbook")
	}
	return updated, nil
}

// UploadSigned attaches the mentor-signed PDF to a Pending month. Re-uploading overwrites.
func (svc *Service) UploadSigned(ctx context.Context, lb Logbook, file document.Blob) (Logbook, error) {
	if lb.Status != StatusPending {
		return Logbook{}, ErrNotPending
	}
	if err := document.RequirePDF(file); err != nil {
		return Logbook{}, core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	updated, err := svc.gw.UploadSigned(ctx, lb.ID, file)
	if err != nil {
		return Logbook{}, errors.Wrap(err, "uploading signed logbook")
	}
	return updated, nil
}

func (svc *Service) DownloadSigned(ctx context.Context, logbookID string) (document.Blob, error) {
	blob, err := svc.gw.DownloadSigned(ctx, logbookID)
	return blob, errors.Wrap(err, "downloading signed logbook")
}

func (svc *Service) DownloadConsolidated(ctx context.Context, studentID string) (document.Blob, error) {
	blob, err := svc.gw.DownloadConsolidated(ctx, studentID)
	return blob, errors.Wrap(err, "downloading consolidated logbook")
}

// Pending lists the logbooks awaiting the current mentor's decision.
func (svc *Service) Pending(ctx context.Context) ([]Logbook, error) {
	lbs, err := svc.gw.PendingLogbooks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching pending logbooks")
	}
	return lbs, nil
}
