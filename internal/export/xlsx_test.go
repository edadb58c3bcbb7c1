package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nomenclator/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	records := []model.Nomenclature{
		{ID: 1, Nomenclature: "PRJ-ARC-DD-001", Project: "Tower", Extension: "dwg", Date: "2024-05-01", Time: "09:15:00", User: "ana"},
		{ID: 2, Nomenclature: "PRJ-STR", Project: "Tower B annex", Extension: "pdf", Date: "2024-05-02", Time: "17:40:12", User: "joan"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"1", "PRJ-ARC-DD-001", "Tower", "dwg", "2024-05-01", "09:15:00", "ana"}, rows[1])
	assert.Equal(t, []string{"2", "PRJ-STR", "Tower B annex", "pdf", "2024-05-02", "17:40:12", "joan"}, rows[2])

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("PRJ-ARC-DD-001")+widthPadding), width)

	width, err = f.GetColWidth(SheetName, "G")
	require.NoError(t, err)
	assert.Equal(t, float64(len("user")+widthPadding), width)
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestWriteXLSX_WriterError(t *testing.T) {
	err := WriteXLSX(brokenWriter{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write workbook failed")
}
