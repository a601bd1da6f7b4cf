package logbook

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
)

// fakeGateway is an in-memory Gateway that counts calls per method.
type fakeGateway struct {
	mu       sync.Mutex
	seq      int
	logbooks map[string]*Logbook // by id
	signed   map[string]document.Blob
	calls    map[string]int
	failWith map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		logbooks: make(map[string]*Logbook),
		signed:   make(map[string]document.Blob),
		calls:    make(map[string]int),
		failWith: make(map[string]error),
	}
}

func (gw *fakeGateway) hit(name string) error {
	gw.calls[name]++
	return gw.failWith[name]
}

func (gw *fakeGateway) count(name string) int {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.calls[name]
}

func (gw *fakeGateway) put(lb Logbook) Logbook {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if lb.ID == "" {
		gw.seq++
		lb.ID = "lb" + strconv.Itoa(gw.seq)
	}
	gw.logbooks[lb.ID] = &lb
	return lb
}

func (gw *fakeGateway) find(studentID string, month, year int) *Logbook {
	for _, lb := range gw.logbooks {
		if lb.StudentID == studentID && lb.Month == month && lb.Year == year {
			return lb
		}
	}
	return nil
}

func (gw *fakeGateway) GetLogbook(_ context.Context, studentID string, month, year int) (Logbook, bool, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("GetLogbook"); err != nil {
		return Logbook{}, false, err
	}
	if lb := gw.find(studentID, month, year); lb != nil {
		return *lb, true, nil
	}
	return Logbook{}, false, nil
}

func (gw *fakeGateway) SaveEntry(_ context.Context, d EntryDraft) (Logbook, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("SaveEntry"); err != nil {
		return Logbook{}, err
	}
	lb := gw.find(d.StudentID, d.Month, d.Year)
	if lb == nil {
		gw.seq++
		lb = &Logbook{ID: "lb" + strconv.Itoa(gw.seq), StudentID: d.StudentID, Month: d.Month, Year: d.Year, Status: StatusDraft}
		gw.logbooks[lb.ID] = lb
	}
	lb.PutWeek(d.Entry())
	lb.UpdatedAt = time.Now().UTC()
	return *lb, nil
}

func (gw *fakeGateway) SubmitLogbook(_ context.Context, id string) (Logbook, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("SubmitLogbook"); err != nil {
		return Logbook{}, err
	}
	lb, ok := gw.logbooks[id]
	if !ok {
		return Logbook{}, core.NewAPIError(404, "logbook not found")
	}
	to, err := Transition(lb.Status, EventSubmit)
	if err != nil {
		return Logbook{}, core.NewAPIError(409, err.Error())
	}
	lb.Status = to
	return *lb, nil
}

func (gw *fakeGateway) VerifyLogbook(_ context.Context, id string, req VerifyRequest) (Logbook, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("VerifyLogbook"); err != nil {
		return Logbook{}, err
	}
	lb, ok := gw.logbooks[id]
	if !ok {
		return Logbook{}, core.NewAPIError(404, "logbook not found")
	}
	ev, _ := req.Action.Event()
	to, err := Transition(lb.Status, ev)
	if err != nil {
		return Logbook{}, core.NewAPIError(409, err.Error())
	}
	lb.Status = to
	lb.RejectionReason = req.Reason
	lb.MentorComments = req.Comments
	return *lb, nil
}

func (gw *fakeGateway) UploadSigned(_ context.Context, id string, file document.Blob) (Logbook, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("UploadSigned"); err != nil {
		return Logbook{}, err
	}
	lb, ok := gw.logbooks[id]
	if !ok {
		return Logbook{}, core.NewAPIError(404, "logbook not found")
	}
	gw.signed[id] = file
	lb.SignedPDFPath = "signed/" + id + ".pdf"
	return *lb, nil
}

func (gw *fakeGateway) DownloadSigned(_ context.Context, id string) (document.Blob, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("DownloadSigned"); err != nil {
		return document.Blob{}, err
	}
	blob, ok := gw.signed[id]
	if !ok {
		return document.Blob{}, core.NewAPIError(404, "no signed PDF uploaded")
	}
	return blob, nil
}

func (gw *fakeGateway) DownloadConsolidated(_ context.Context, studentID string) (document.Blob, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("DownloadConsolidated"); err != nil {
		return document.Blob{}, err
	}
	return samplePDF(fmt.Sprintf("consolidated-%s.pdf", studentID)), nil
}

func (gw *fakeGateway) History(_ context.Context, studentID string) ([]Summary, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("History"); err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(gw.logbooks))
	for _, lb := range gw.logbooks {
		if lb.StudentID == studentID {
			out = append(out, lb.Summary())
		}
	}
	return out, nil
}

func (gw *fakeGateway) PendingLogbooks(context.Context) ([]Logbook, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if err := gw.hit("PendingLogbooks"); err != nil {
		return nil, err
	}
	out := make([]Logbook, 0)
	for _, lb := range gw.logbooks {
		if lb.Status == StatusPending {
			out = append(out, *lb)
		}
	}
	return out, nil
}

type fixedTimeline Timeline

func (tl fixedTimeline) Timeline(context.Context, string) (Timeline, error) {
	return Timeline(tl), nil
}

type recordingConfirmer struct {
	answer  bool
	prompts []string
}

func (c *recordingConfirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

func samplePDF(name string) document.Blob {
	return document.Blob{Data: []byte("%PDF-1.4\n1 0 obj\n%%EOF\n"), ContentType: document.ContentTypePDF, Filename: name}
}

func newTestService(t *testing.T) (*Service, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	return NewService(gw, core.NewValidator(validator.New(), core.NewTranslator())), gw
}

func fullWeek(n int) WeekEntry {
	return WeekEntry{WeekNumber: n, Activities: fmt.Sprintf("week %d work", n)}
}
