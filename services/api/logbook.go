package apisvc

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
)

var _ logbook.Gateway = (*Client)(nil)

func (c *Client) GetLogbook(ctx context.Context, studentID string, month, year int) (logbook.Logbook, bool, error) {
	q := url.Values{}
	q.Set("studentId", studentID)
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var res logbook.LookupResult
	if err := c.doJSON(ctx, http.MethodGet, "/logbooks", q, nil, &res); err != nil {
		return logbook.Logbook{}, false, err
	}
	if !res.Exists || res.Logbook == nil {
		return logbook.Logbook{}, false, nil
	}
	return *res.Logbook, true, nil
}

func (c *Client) SaveEntry(ctx context.Context, draft logbook.EntryDraft) (logbook.Logbook, error) {
	var lb logbook.Logbook
	err := c.doJSON(ctx, http.MethodPost, "/logbooks/entry", nil, draft, &lb)
	return lb, err
}

func (c *Client) SubmitLogbook(ctx context.Context, logbookID string) (logbook.Logbook, error) {
	var lb logbook.Logbook
	err := c.doJSON(ctx, http.MethodPost, "/logbooks/submit", nil, logbook.SubmitRequest{LogbookID: logbookID}, &lb)
	return lb, err
}

func (c *Client) VerifyLogbook(ctx context.Context, logbookID string, req logbook.VerifyRequest) (logbook.Logbook, error) {
	var lb logbook.Logbook
	err := c.doJSON(ctx, http.MethodPost, pathf("/logbooks/verify/%s", logbookID), nil, req, &lb)
	return lb, err
}

func (c *Client) UploadSigned(ctx context.Context, logbookID string, file document.Blob) (logbook.Logbook, error) {
	var lb logbook.Logbook
	err := c.doMultipart(ctx, pathf("/logbooks/upload-signed/%s", logbookID), nil, file, &lb)
	return lb, err
}

func (c *Client) DownloadSigned(ctx context.Context, logbookID string) (document.Blob, error) {
	return c.doBinary(ctx, pathf("/logbooks/%s/download", logbookID))
}

func (c *Client) DownloadConsolidated(ctx context.Context, studentID string) (document.Blob, error) {
	return c.doBinary(ctx, pathf("/logbooks/consolidated/%s", studentID))
}

func (c *Client) History(ctx context.Context, studentID string) ([]logbook.Summary, error) {
	history := make([]logbook.Summary, 0)
	err := c.doJSON(ctx, http.MethodGet, pathf("/logbooks/history/%s", studentID), nil, nil, &history)
	return history, err
}

func (c *Client) PendingLogbooks(ctx context.Context) ([]logbook.Logbook, error) {
	lbs := make([]logbook.Logbook, 0)
	err := c.doJSON(ctx, http.MethodGet, "/logbooks/pending", nil, nil, &lbs)
	return lbs, err
}
