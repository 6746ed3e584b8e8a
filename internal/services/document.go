package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"path"
	"strings"

	"github.com/nfnt/resize"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// DocumentUpload is a supporting document received from a caller.
type DocumentUpload struct {
	Filename     string
	DocumentType models.DocumentType
	Data         []byte
}

// normalizedDocument is what gets stored and forwarded to the provider.
type normalizedDocument struct {
	filename    string
	contentType string
	data        []byte
}

// normalizeDocument sniffs the upload, passes PDFs through and downscales images
// whose longer side exceeds maxDimension, re-encoding them as JPEG.
func normalizeDocument(doc DocumentUpload, maxSizeBytes int64, maxDimension int) (*normalizedDocument, error) {
	if int64(len(doc.Data)) > maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrDocumentTooLarge, len(doc.Data), maxSizeBytes)
	}
	if len(doc.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedDocument)
	}

	contentType := http.DetectContentType(doc.Data)
	filename := doc.Filename
	if filename == "" {
		filename = "document"
	}

	switch {
	case contentType == "application/pdf":
		return &normalizedDocument{filename: filename, contentType: contentType, data: doc.Data}, nil
	case strings.HasPrefix(contentType, "image/"):
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, contentType)
	}

	img, format, err := image.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDocument, err)
	}

	limit := uint(maxDimension)
	if maxDimension <= 0 || (uint(img.Bounds().Dx()) <= limit && uint(img.Bounds().Dy()) <= limit) {
		return &normalizedDocument{filename: filename, contentType: "image/" + format, data: doc.Data}, nil
	}

	resized := resize.Thumbnail(limit, limit, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to re-encode resized image: %w", err)
	}
	return &normalizedDocument{
		filename:    strings.TrimSuffix(filename, path.Ext(filename)) + ".jpg",
		contentType: "image/jpeg",
		data:        buf.Bytes(),
	}, nil
}
