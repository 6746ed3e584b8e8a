package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

func sampleItems() []models.VerificationHistoryItem {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	completed := created.Add(time.Hour)
	return []models.VerificationHistoryItem{
		{ID: "v1", ServiceType: models.ServiceChatGPT, Status: models.StatusApproved, VeteranName: "John Doe", CreatedAt: created, CompletedAt: &completed},
		{ID: "v2", ServiceType: models.ServiceSpotify, Status: models.StatusPending, CreatedAt: created},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleItems()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"v1", "chatgpt", "approved", "John Doe", "2025-05-01T10:00:00Z", "2025-05-01T11:00:00Z"}, records[1])
	assert.Equal(t, "", records[2][5])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleItems()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Veteran", rows[0][3])
	assert.Equal(t, "John Doe", rows[1][3])
	assert.Equal(t, "pending", rows[2][2])
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 5, 1, 10, 2, 3, 0, time.UTC)
	assert.Equal(t, "verification-history-20250501-100203.xlsx", FormatXLSX.Filename(at))
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}
