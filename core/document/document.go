// Package document holds binary payloads fetched from or sent to the API
// and the revocable preview handles a front end opens on them.
package document

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const ContentTypePDF = "application/pdf"

var ErrNotPDF = errors.New("only PDF files are accepted")

// Blob is a typed binary payload.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (b Blob) Reader() io.Reader { return bytes.NewReader(b.Data) }
func (b Blob) Size() int         { return len(b.Data) }
func (b Blob) Empty() bool       { return len(b.Data) == 0 }

// IsPDF checks the declared content type and the magic header.
func (b Blob) IsPDF() bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(b.ContentType, ";", 2)[0]))
	return ct == ContentTypePDF && bytes.HasPrefix(b.Data, []byte("%PDF-"))
}

// ReadFile loads a local file as a Blob, typed by its extension.
func ReadFile(path string) (Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Blob{}, errors.Wrap(err, "reading file")
	}
	ct := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		ct = ContentTypePDF
	}
	return Blob{Data: data, ContentType: ct, Filename: filepath.Base(path)}, nil
}

// RequirePDF returns ErrNotPDF unless b is a PDF.
func RequirePDF(b Blob) error {
	if !b.IsPDF() {
		return ErrNotPDF
	}
	return nil
}
