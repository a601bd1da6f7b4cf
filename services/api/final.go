package apisvc

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	"github.com/trezcool/placement/core/submission"
)

var (
	_ placement.Gateway  = (*Client)(nil)
	_ submission.Gateway = (*Client)(nil)
	_ marks.Gateway      = (*Client)(nil)
	_ session.Gateway    = (*Client)(nil)
)

// NotifyRequest is the body of POST /submissions/notify.
type NotifyRequest struct {
	StudentID string `json:"studentId"`
}

// SuccessResponse is the body of endpoints that only acknowledge.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.Session, error) {
	var s session.Session
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, creds, &s)
	return s, err
}

func (c *Client) GetPlacement(ctx context.Context, studentID string) (placement.Placement, bool, error) {
	var q url.Values
	if studentID != "" {
		q = url.Values{"studentId": {studentID}}
	}
	var res placement.LookupResult
	if err := c.doJSON(ctx, http.MethodGet, "/placement", q, nil, &res); err != nil {
		return placement.Placement{}, false, err
	}
	if !res.Exists || res.Placement == nil {
		return placement.Placement{}, false, nil
	}
	return *res.Placement, true, nil
}

func (c *Client) CreatePlacement(ctx context.Context, np placement.NewPlacement) (placement.Placement, error) {
	var p placement.Placement
	err := c.doJSON(ctx, http.MethodPost, "/placement", nil, np, &p)
	return p, err
}

func (c *Client) SubmissionStatus(ctx context.Context, studentID string) (submission.Status, error) {
	var st submission.Status
	err := c.doJSON(ctx, http.MethodGet, pathf("/submissions/%s", studentID), nil, nil, &st)
	return st, err
}

func (c *Client) UploadMarksheet(ctx context.Context, kind submission.Kind, file document.Blob) (submission.Submission, error) {
	var sub submission.Submission
	err := c.doMultipart(ctx, "/submissions/marksheet", map[string]string{"kind": string(kind)}, file, &sub)
	return sub, err
}

func (c *Client) UploadPresentation(ctx context.Context, file document.Blob) (submission.Submission, error) {
	var sub submission.Submission
	err := c.doMultipart(ctx, "/submissions/presentation", nil, file, &sub)
	return sub, err
}

func (c *Client) NotifyCoordinator(ctx context.Context, studentID string) error {
	return c.doJSON(ctx, http.MethodPost, "/submissions/notify", nil, NotifyRequest{StudentID: studentID}, nil)
}

func (c *Client) GetMarks(ctx context.Context, studentID string) (marks.FinalMarks, error) {
	var fm marks.FinalMarks
	err := c.doJSON(ctx, http.MethodGet, pathf("/marks/%s", studentID), nil, nil, &fm)
	return fm, err
}

func (c *Client) SubmitAcademicMarks(ctx context.Context, am marks.AcademicMarks) (marks.FinalMarks, error) {
	var fm marks.FinalMarks
	err := c.doJSON(ctx, http.MethodPost, "/marks/academic", nil, am, &fm)
	return fm, err
}

func (c *Client) SubmitIndustryMarks(ctx context.Context, im marks.IndustryMarks) (marks.FinalMarks, error) {
	var fm marks.FinalMarks
	err := c.doJSON(ctx, http.MethodPost, "/marks/industry", nil, im, &fm)
	return fm, err
}
