package submission

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
)

var (
	ErrAttemptsExhausted  = errors.New("maximum number of upload attempts reached")
	ErrLogbooksIncomplete = errors.New("every logbook month must be approved first")
	ErrInvalidKind        = errors.New("unknown submission kind")
	ErrMissingArtifacts   = errors.New("upload both marksheets and the presentation before notifying the coordinator")
)

type (
	Gateway interface {
		SubmissionStatus(ctx context.Context, studentID string) (Status, error)
		UploadMarksheet(ctx context.Context, kind Kind, file document.Blob) (Submission, error)
		UploadPresentation(ctx context.Context, file document.Blob) (Submission, error)
		NotifyCoordinator(ctx context.Context, studentID string) error
	}

	// HistorySource lists a student's logbook month summaries.
	HistorySource interface {
		History(ctx context.Context, studentID string) ([]logbook.Summary, error)
	}

	Service struct {
		gw        Gateway
		history   HistorySource
		timelines logbook.TimelineSource
	}
)

func NewService(gw Gateway, history HistorySource, timelines logbook.TimelineSource) *Service {
	return &Service{gw: gw, history: history, timelines: timelines}
}

// Gate unlocks the final stage once every month of the timeline is Approved.
func Gate(history []logbook.Summary, totalMonths int) error {
	if totalMonths < 1 {
		return ErrLogbooksIncomplete
	}
	approved := make(map[int]bool, len(history))
	for _, s := range history {
		if s.Status == logbook.StatusApproved {
			approved[s.Month] = true
		}
	}
	for m := 1; m <= totalMonths; m++ {
		if !approved[m] {
			return errors.Wrapf(ErrLogbooksIncomplete, "month %d", m)
		}
	}
	return nil
}

// Unlocked checks the final-stage gate against the server's history.
func (svc *Service) Unlocked(ctx context.Context, studentID string) error {
	tl, err := svc.timelines.Timeline(ctx, studentID)
	if err != nil {
		return err
	}
	history, err := svc.history.History(ctx, studentID)
	if err != nil {
		return err
	}
	return Gate(history, tl.TotalMonths)
}

func (svc *Service) Status(ctx context.Context, studentID string) (Status, error) {
	st, err := svc.gw.SubmissionStatus(ctx, core.CleanString(studentID))
	if err != nil {
		return Status{}, errors.Wrap(err, "fetching submissions")
	}
	return st, nil
}

func (svc *Service) UploadMarksheet(ctx context.Context, studentID string, kind Kind, file document.Blob) (Submission, error) {
	if !kind.Marksheet() {
		return Submission{}, ErrInvalidKind
	}
	return svc.upload(ctx, studentID, Upload{Kind: kind, File: file})
}

func (svc *Service) UploadPresentation(ctx context.Context, studentID string, file document.Blob) (Submission, error) {
	return svc.upload(ctx, studentID, Upload{Kind: KindPresentation, File: file})
}

func (svc *Service) upload(ctx context.Context, studentID string, up Upload) (Submission, error) {
	if err := document.RequirePDF(up.File); err != nil {
		return Submission{}, core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	if err := svc.Unlocked(ctx, studentID); err != nil {
		return Submission{}, err
	}
	st, err := svc.Status(ctx, studentID)
	if err != nil {
		return Submission{}, err
	}
	if st.Get(up.Kind).AttemptsLeft() == 0 {
		return Submission{}, ErrAttemptsExhausted
	}

	var sub Submission
	if up.Kind == KindPresentation {
		sub, err = svc.gw.UploadPresentation(ctx, up.File)
	} else {
		sub, err = svc.gw.UploadMarksheet(ctx, up.Kind, up.File)
	}
	if err != nil {
		return Submission{}, errors.Wrapf(err, "uploading %s", up.Kind)
	}
	return sub, nil
}

// NotifyCoordinator tells the coordinator the final materials are ready.
func (svc *Service) NotifyCoordinator(ctx context.Context, studentID string) error {
	st, err := svc.Status(ctx, studentID)
	if err != nil {
		return err
	}
	if !st.Complete() {
		return ErrMissingArtifacts
	}
	return errors.Wrap(svc.gw.NotifyCoordinator(ctx, studentID), "notifying coordinator")
}
