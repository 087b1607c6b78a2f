package render

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type csvRow struct {
	Name   string `csv:"name"`
	Serial string `csv:"serial"`
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	rows := []csvRow{{Name: "dev-1", Serial: "SN1"}, {Name: "dev-2", Serial: "SN2"}}

	path, err := WriteCSV(dir, "Report", "devices", now, &rows)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,serial\ndev-1,SN1\ndev-2,SN2\n", string(data))
}

func TestWriteCSVRefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	rows := []csvRow{{Name: "dev-1", Serial: "SN1"}}

	_, err := WriteCSV(dir, "Report", "devices", now, &rows)
	require.NoError(t, err)

	_, err = WriteCSV(dir, "Report", "devices", now, &rows)
	require.Error(t, err)
}
