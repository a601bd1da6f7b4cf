package logbook

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/document"
)

var (
	ErrNotActionable     = errors.New("this logbook has already been verified")
	ErrNoActionChosen    = errors.New("choose approve or reject first")
	ErrPreconditionUnmet = errors.New("approve needs a signed PDF, reject needs a reason")
)

// Verification is the mentor view over one submitted month: approve after
// uploading the signed PDF, or reject with a reason.
// It is not safe for concurrent use.
type Verification struct {
	svc *Service
	lb  Logbook

	action         Action
	signedUploaded bool
	reason         string
	comments       string
	busy           bool
	done           bool
}

func NewVerification(svc *Service, lb Logbook) *Verification {
	return &Verification{svc: svc, lb: lb}
}

// Actionable reports whether the month is still awaiting a decision.
func (v *Verification) Actionable() bool {
	return !v.done && v.lb.Status == StatusPending
}

// Choose selects the action to confirm.
func (v *Verification) Choose(a Action) error {
	if !v.Actionable() {
		return ErrNotActionable
	}
	if _, ok := a.Event(); !ok {
		return ErrNoActionChosen
	}
	v.action = a
	return nil
}

// UploadSigned attaches the signed PDF. It may be repeated; each upload overwrites the previous one.
func (v *Verification) UploadSigned(ctx context.Context, file document.Blob) error {
	if !v.Actionable() {
		return ErrNotActionable
	}
	v.busy = true
	defer func() { v.busy = false }()

	lb, err := v.svc.UploadSigned(ctx, v.lb, file)
	if err != nil {
		return err
	}
	v.lb = lb
	v.signedUploaded = true
	return nil
}

func (v *Verification) SetReason(reason string)     { v.reason = reason }
func (v *Verification) SetComments(comments string) { v.comments = comments }

// CanConfirm reports whether the confirm control is enabled.
func (v *Verification) CanConfirm() bool {
	if !v.Actionable() || v.busy {
		return false
	}
	switch v.action {
	case ActionApprove:
		return v.signedUploaded
	case ActionReject:
		return strings.TrimSpace(v.reason) != ""
	default:
		return false
	}
}

// Confirm posts the decision. On success the local status shows the outcome
// right away and is then replaced by the logbook the server returned.
// On failure nothing changes so the mentor can retry.
func (v *Verification) Confirm(ctx context.Context) error {
	if !v.Actionable() {
		return ErrNotActionable
	}
	if v.action == ActionNone {
		return ErrNoActionChosen
	}
	if !v.CanConfirm() {
		return ErrPreconditionUnmet
	}

	v.busy = true
	defer func() { v.busy = false }()

	req := VerifyRequest{Action: v.action, Comments: v.comments}
	if v.action == ActionReject {
		req.Reason = v.reason
	}
	updated, err := v.svc.Verify(ctx, v.lb, req)
	if err != nil {
		return err
	}

	ev, _ := v.action.Event()
	v.lb.Status, _ = Transition(v.lb.Status, ev)
	if updated.ID != "" {
		v.lb = updated
	}
	v.done = true
	return nil
}

func (v *Verification) Logbook() Logbook     { return v.lb }
func (v *Verification) Action() Action       { return v.action }
func (v *Verification) SignedUploaded() bool { return v.signedUploaded }
func (v *Verification) Busy() bool           { return v.busy }
func (v *Verification) Done() bool           { return v.done }
