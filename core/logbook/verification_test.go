package logbook

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
)

func pendingLogbook(gw *fakeGateway) Logbook {
	return gw.put(Logbook{StudentID: "s1", Month: 1, Year: 2025, Status: StatusPending, Weeks: []WeekEntry{fullWeek(1)}})
}

// Scenario C: approve stays disabled until the signed PDF is uploaded.
func TestVerification_Approve(t *testing.T) {
	ctx := context.Background()
	svc, gw := newTestService(t)
	v := NewVerification(svc, pendingLogbook(gw))

	require.True(t, v.Actionable())
	require.NoError(t, v.Choose(ActionApprove))
	assert.False(t, v.CanConfirm())
	assert.Equal(t, ErrPreconditionUnmet, v.Confirm(ctx))
	assert.Equal(t, 0, gw.count("VerifyLogbook"))

	require.NoError(t, v.UploadSigned(ctx, samplePDF("signed.pdf")))
	assert.True(t, v.SignedUploaded())
	assert.NotEmpty(t, v.Logbook().SignedPDFPath)
	assert.True(t, v.CanConfirm())

	require.NoError(t, v.Confirm(ctx))
	assert.Equal(t, StatusApproved, v.Logbook().Status)
	assert.True(t, v.Done())
	assert.False(t, v.Busy())
	assert.False(t, v.Actionable())
	assert.Equal(t, ErrNotActionable, v.Confirm(ctx))
	assert.Equal(t, 1, gw.count("VerifyLogbook"))
}

func TestVerification_UploadRejectsNonPDF(t *testing.T) {
	svc, gw := newTestService(t)
	v := NewVerification(svc, pendingLogbook(gw))

	err := v.UploadSigned(context.Background(), document.Blob{Data: []byte("PK\x03\x04"), ContentType: "application/zip", Filename: "signed.zip"})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.FieldMap(), "file")
	assert.False(t, v.SignedUploaded())
	assert.Equal(t, 0, gw.count("UploadSigned"))
}

func TestVerification_Reject(t *testing.T) {
	ctx := context.Background()
	svc, gw := newTestService(t)
	v := NewVerification(svc, pendingLogbook(gw))

	require.NoError(t, v.Choose(ActionReject))
	for _, reason := range []string{"", "   ", "\n\t"} {
		v.SetReason(reason)
		assert.False(t, v.CanConfirm(), "reason %q", reason)
		assert.Equal(t, ErrPreconditionUnmet, v.Confirm(ctx))
	}
	assert.Equal(t, 0, gw.count("VerifyLogbook"))

	v.SetReason("  week 3 is missing  ")
	v.SetComments("otherwise good")
	require.NoError(t, v.Confirm(ctx))

	lb := v.Logbook()
	assert.Equal(t, StatusRejected, lb.Status)
	assert.Equal(t, "week 3 is missing", lb.RejectionReason)
	assert.Equal(t, "otherwise good", lb.MentorComments)
}

func TestVerification_ServerErrorAllowsRetry(t *testing.T) {
	ctx := context.Background()
	svc, gw := newTestService(t)
	v := NewVerification(svc, pendingLogbook(gw))
	require.NoError(t, v.Choose(ActionReject))
	v.SetReason("incomplete")

	gw.failWith["VerifyLogbook"] = core.NewAPIError(500, "")
	err := v.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, "request failed with status 500", core.UserMessage(err, ""))
	assert.Equal(t, StatusPending, v.Logbook().Status)
	assert.False(t, v.Done())
	assert.True(t, v.CanConfirm())

	delete(gw.failWith, "VerifyLogbook")
	require.NoError(t, v.Confirm(ctx))
	assert.Equal(t, StatusRejected, v.Logbook().Status)
}

func TestVerification_NotActionable(t *testing.T) {
	svc, gw := newTestService(t)
	lb := gw.put(Logbook{StudentID: "s1", Month: 1, Year: 2025, Status: StatusApproved})
	v := NewVerification(svc, lb)

	assert.False(t, v.Actionable())
	assert.Equal(t, ErrNotActionable, v.Choose(ActionReject))
	assert.Equal(t, ErrNotActionable, v.UploadSigned(context.Background(), samplePDF("x.pdf")))
}

func TestVerification_ChooseRequiresAction(t *testing.T) {
	svc, gw := newTestService(t)
	v := NewVerification(svc, pendingLogbook(gw))

	assert.Equal(t, ErrNoActionChosen, v.Choose(ActionNone))
	assert.Equal(t, ErrNoActionChosen, v.Confirm(context.Background()))
}
