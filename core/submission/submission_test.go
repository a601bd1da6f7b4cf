package submission

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
)

type fakeGateway struct {
	status   Status
	uploads  int
	notified []string
}

func (gw *fakeGateway) SubmissionStatus(context.Context, string) (Status, error) {
	return gw.status, nil
}

func (gw *fakeGateway) UploadMarksheet(_ context.Context, kind Kind, _ document.Blob) (Submission, error) {
	return gw.record(kind), nil
}

func (gw *fakeGateway) UploadPresentation(_ context.Context, _ document.Blob) (Submission, error) {
	return gw.record(KindPresentation), nil
}

func (gw *fakeGateway) record(kind Kind) Submission {
	gw.uploads++
	sub := gw.status.Get(kind)
	if sub == nil {
		sub = &Submission{Kind: kind}
		switch kind {
		case KindAcademicMarksheet:
			gw.status.AcademicMarksheet = sub
		case KindIndustryMarksheet:
			gw.status.IndustryMarksheet = sub
		default:
			gw.status.Presentation = sub
		}
	}
	sub.Attempts++
	return *sub
}

func (gw *fakeGateway) NotifyCoordinator(_ context.Context, studentID string) error {
	gw.notified = append(gw.notified, studentID)
	return nil
}

type fakeHistory []logbook.Summary

func (h fakeHistory) History(context.Context, string) ([]logbook.Summary, error) { return h, nil }

type fixedTimeline int

func (n fixedTimeline) Timeline(context.Context, string) (logbook.Timeline, error) {
	return logbook.Timeline{TotalMonths: int(n)}, nil
}

func approved(months ...int) fakeHistory {
	h := make(fakeHistory, 0, len(months))
	for _, m := range months {
		h = append(h, logbook.Summary{Month: m, Year: 2025, Status: logbook.StatusApproved})
	}
	return h
}

func pdf() document.Blob {
	return document.Blob{Data: []byte("%PDF-1.7\n%%EOF"), ContentType: document.ContentTypePDF, Filename: "sheet.pdf"}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name        string
		history     []logbook.Summary
		totalMonths int
		wantErr     bool
	}{
		{name: "all approved", history: approved(1, 2, 3), totalMonths: 3},
		{name: "one pending", history: append(approved(1, 2), logbook.Summary{Month: 3, Status: logbook.StatusPending}), totalMonths: 3, wantErr: true},
		{name: "missing month", history: approved(1, 3), totalMonths: 3, wantErr: true},
		{name: "no timeline", history: approved(1), totalMonths: 0, wantErr: true},
		{name: "extra months ignored", history: approved(1, 2, 3, 4), totalMonths: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Gate(tt.history, tt.totalMonths)
			if (err != nil) != tt.wantErr {
				t.Errorf("Gate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				assert.Equal(t, ErrLogbooksIncomplete, errors.Cause(err))
			}
		})
	}
}

func TestService_UploadAttemptCap(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw, approved(1, 2), fixedTimeline(2))

	for i := 1; i <= MaxAttempts; i++ {
		sub, err := svc.UploadMarksheet(ctx, "s1", KindIndustryMarksheet, pdf())
		require.NoError(t, err)
		assert.Equal(t, i, sub.Attempts)
	}
	_, err := svc.UploadMarksheet(ctx, "s1", KindIndustryMarksheet, pdf())
	assert.Equal(t, ErrAttemptsExhausted, err)
	assert.Equal(t, MaxAttempts, gw.uploads)

	// other artifacts keep their own counter
	_, err = svc.UploadMarksheet(ctx, "s1", KindAcademicMarksheet, pdf())
	assert.NoError(t, err)
}

func TestService_UploadRefusals(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}

	locked := NewService(gw, approved(1), fixedTimeline(2))
	_, err := locked.UploadPresentation(ctx, "s1", pdf())
	assert.Equal(t, ErrLogbooksIncomplete, errors.Cause(err))

	svc := NewService(gw, approved(1), fixedTimeline(1))
	_, err = svc.UploadMarksheet(ctx, "s1", KindPresentation, pdf())
	assert.Equal(t, ErrInvalidKind, err)

	_, err = svc.UploadPresentation(ctx, "s1", document.Blob{Data: []byte("hello"), ContentType: "text/plain"})
	assert.Error(t, err)
	assert.Equal(t, 0, gw.uploads)
}

func TestService_NotifyCoordinator(t *testing.T) {
	ctx := context.Background()
	gw := &fakeGateway{}
	svc := NewService(gw, approved(1), fixedTimeline(1))

	assert.Equal(t, ErrMissingArtifacts, svc.NotifyCoordinator(ctx, "s1"))

	_, err := svc.UploadMarksheet(ctx, "s1", KindAcademicMarksheet, pdf())
	require.NoError(t, err)
	_, err = svc.UploadMarksheet(ctx, "s1", KindIndustryMarksheet, pdf())
	require.NoError(t, err)
	_, err = svc.UploadPresentation(ctx, "s1", pdf())
	require.NoError(t, err)

	require.NoError(t, svc.NotifyCoordinator(ctx, "s1"))
	assert.Equal(t, []string{"s1"}, gw.notified)
}
