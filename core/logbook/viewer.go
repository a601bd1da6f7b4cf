package logbook

import (
	"context"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
)

const (
	consolidatedFailedMsg = "could not load the consolidated logbook, please try again"
	signedFailedMsg       = "could not load the signed logbook, please try again"
)

// Viewer previews one PDF (a single signed month or the consolidated logbook).
// Retry re-invokes the same fetch. Close releases the preview.
type Viewer struct {
	fetch    func(ctx context.Context) (document.Blob, error)
	previews *document.Previews
	failMsg  string

	loading bool
	handle  *document.Handle
	blob    document.Blob
	errMsg  string
}

func NewSignedViewer(svc *Service, logbookID string, previews *document.Previews) *Viewer {
	return &Viewer{
		fetch:    func(ctx context.Context) (document.Blob, error) { return svc.DownloadSigned(ctx, logbookID) },
		previews: previews,
		failMsg:  signedFailedMsg,
	}
}

func NewConsolidatedViewer(svc *Service, studentID string, previews *document.Previews) *Viewer {
	return &Viewer{
		fetch:    func(ctx context.Context) (document.Blob, error) { return svc.DownloadConsolidated(ctx, studentID) },
		previews: previews,
		failMsg:  consolidatedFailedMsg,
	}
}

// Load fetches the PDF and opens a fresh preview, releasing the previous one.
func (vw *Viewer) Load(ctx context.Context) error {
	vw.loading = true
	defer func() { vw.loading = false }()
	vw.errMsg = ""

	blob, err := vw.fetch(ctx)
	if err != nil {
		vw.errMsg = core.UserMessage(err, vw.failMsg)
		return err
	}
	h, err := vw.previews.Open(blob)
	if err != nil {
		vw.errMsg = vw.failMsg
		return err
	}
	if vw.handle != nil {
		_ = vw.handle.Release()
	}
	vw.handle, vw.blob = h, blob
	return nil
}

// Retry is Load, for the "Try Again" affordance.
func (vw *Viewer) Retry(ctx context.Context) error { return vw.Load(ctx) }

// Close releases the current preview, if any.
func (vw *Viewer) Close() error {
	if vw.handle == nil {
		return nil
	}
	err := vw.handle.Release()
	vw.handle = nil
	return err
}

func (vw *Viewer) Loading() bool            { return vw.loading }
func (vw *Viewer) Err() string              { return vw.errMsg }
func (vw *Viewer) Handle() *document.Handle { return vw.handle }
func (vw *Viewer) Blob() document.Blob      { return vw.blob }
