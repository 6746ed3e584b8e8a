package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeDocument_PDFPassesThrough(t *testing.T) {
	data := []byte("%PDF-1.4\n1 0 obj\n")
	doc, err := normalizeDocument(DocumentUpload{Filename: "dd214.pdf", Data: data}, 1<<20, 100)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.contentType)
	assert.Equal(t, "dd214.pdf", doc.filename)
	assert.Equal(t, data, doc.data)
}

func TestNormalizeDocument_SmallImageKept(t *testing.T) {
	data := pngOf(t, 40, 20)
	doc, err := normalizeDocument(DocumentUpload{Filename: "id.png", Data: data}, 1<<20, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.contentType)
	assert.Equal(t, data, doc.data)
}

func TestNormalizeDocument_LargeImageDownscaled(t *testing.T) {
	doc, err := normalizeDocument(DocumentUpload{Filename: "card.png", Data: pngOf(t, 400, 200)}, 1<<20, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", doc.contentType)
	assert.Equal(t, "card.jpg", doc.filename)

	img, err := jpeg.Decode(bytes.NewReader(doc.data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestNormalizeDocument_Rejects(t *testing.T) {
	_, err := normalizeDocument(DocumentUpload{Data: make([]byte, 11)}, 10, 100)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	_, err = normalizeDocument(DocumentUpload{Data: []byte("plain text, not a document")}, 1<<20, 100)
	assert.ErrorIs(t, err, ErrUnsupportedDocument)

	_, err = normalizeDocument(DocumentUpload{}, 1<<20, 100)
	assert.ErrorIs(t, err, ErrUnsupportedDocument)
}
