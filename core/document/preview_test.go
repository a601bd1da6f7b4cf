package document

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfBlob() Blob {
	return Blob{Data: []byte("%PDF-1.4\n%%EOF\n"), ContentType: ContentTypePDF, Filename: "month-1.pdf"}
}

func TestHandle_ReleaseIsIdempotent(t *testing.T) {
	previews := NewPreviews(t.TempDir())

	h, err := previews.Open(pdfBlob())
	require.NoError(t, err)
	path, err := h.Path()
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.NoError(t, h.Release())
	assert.NoError(t, h.Release()) // second close is a no-op
	assert.True(t, h.Released())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "preview file should be removed")

	_, err = h.Path()
	assert.Equal(t, ErrReleased, err, "released handle must not be usable")
	assert.Equal(t, 0, previews.OpenCount())
}

func TestPreviews_CloseReleasesEverythingOnce(t *testing.T) {
	previews := NewPreviews(t.TempDir())

	closed, err := previews.Open(pdfBlob())
	require.NoError(t, err)
	left1, err := previews.Open(pdfBlob())
	require.NoError(t, err)
	left2, err := previews.Open(pdfBlob())
	require.NoError(t, err)

	// explicit modal close
	require.NoError(t, closed.Release())
	assert.Equal(t, 2, previews.OpenCount())

	// teardown
	require.NoError(t, previews.Close())
	assert.Equal(t, 0, previews.OpenCount())
	for _, h := range []*Handle{closed, left1, left2} {
		assert.True(t, h.Released())
	}

	// teardown twice stays quiet
	assert.NoError(t, previews.Close())
}

func TestBlob_IsPDF(t *testing.T) {
	tests := []struct {
		name string
		blob Blob
		want bool
	}{
		{name: "pdf", blob: pdfBlob(), want: true},
		{name: "pdf with params", blob: Blob{Data: []byte("%PDF-1.7"), ContentType: "application/pdf; charset=binary"}, want: true},
		{name: "json error typed as pdf", blob: Blob{Data: []byte(`{"message":"nope"}`), ContentType: ContentTypePDF}},
		{name: "pdf bytes typed as json", blob: Blob{Data: []byte("%PDF-1.4"), ContentType: "application/json"}},
		{name: "empty", blob: Blob{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.blob.IsPDF(); got != tt.want {
				t.Errorf("IsPDF() = %v, want %v", got, tt.want)
			}
		})
	}
}
