package document

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

var ErrReleased = errors.New("preview already released")

// Handle is a revocable local copy of a Blob, the equivalent of an object URL:
// it is valid until Release, which revokes it exactly once.
type Handle struct {
	path     string
	mu       sync.Mutex
	released bool
	once     sync.Once
	onClose  func(*Handle)
}

// Path returns the on-disk location of the preview, or ErrReleased.
func (h *Handle) Path() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return "", ErrReleased
	}
	return h.path, nil
}

// Released reports whether the handle was revoked.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release revokes the handle. Calling it more than once is a no-op.
func (h *Handle) Release() error {
	var err error
	h.once.Do(func() {
		h.mu.Lock()
		h.released = true
		h.mu.Unlock()
		if rmErr := os.Remove(h.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.Wrap(rmErr, "removing preview")
		}
		if h.onClose != nil {
			h.onClose(h)
		}
	})
	return err
}

// Previews tracks the handles opened by one view so that they can all be
// released on teardown.
type Previews struct {
	dir  string
	mu   sync.Mutex
	open map[*Handle]struct{}
}

// NewPreviews stores previews under dir (os.TempDir() when empty).
func NewPreviews(dir string) *Previews {
	return &Previews{dir: dir, open: make(map[*Handle]struct{})}
}

// Open writes b to a fresh temp file and returns its handle.
func (p *Previews) Open(b Blob) (*Handle, error) {
	pattern := "preview-*"
	if b.ContentType == ContentTypePDF {
		pattern += ".pdf"
	}
	f, err := os.CreateTemp(p.dir, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating preview")
	}
	if _, err = f.Write(b.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, errors.Wrap(err, "writing preview")
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, errors.Wrap(err, "closing preview")
	}

	h := &Handle{path: f.Name(), onClose: p.forget}
	p.mu.Lock()
	p.open[h] = struct{}{}
	p.mu.Unlock()
	return h, nil
}

func (p *Previews) forget(h *Handle) {
	p.mu.Lock()
	delete(p.open, h)
	p.mu.Unlock()
}

// OpenCount returns the number of handles not yet released.
func (p *Previews) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.open)
}

// Close releases every handle still open.
func (p *Previews) Close() error {
	p.mu.Lock()
	handles := make([]*Handle, 0, len(p.open))
	for h := range p.open {
		handles = append(handles, h)
	}
	p.mu.Unlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
