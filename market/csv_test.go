package market

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,100.5,101.2,99.8,101.0,120000
2024-01-03,101.0,102.0,100.5,101.5,95000
not-a-date,1,1,1,1,1
2024-01-04,101.5,103.0,101.0,102.5,
2024-01-05,0,1,1,1,100
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	bs, err := ReadCSV(strings.NewReader(sampleCSV), "aapl.us")
	require.NoError(t, err)

	// Bad date and zero-price rows drop; missing volume defaults to 0.
	require.Equal(t, 3, bs.Len())
	assert.Equal(t, "aapl.us", bs.Symbol)
	assert.Equal(t, 101.0, bs.Bars[0].Close)
	assert.Equal(t, 120000.0, bs.Bars[0].Volume)
	assert.Equal(t, 0.0, bs.Bars[2].Volume)
	assert.GreaterOrEqual(t, bs.BadRows(), 2)
	assert.NoError(t, bs.Validate())
}

func TestReadCSVNoVolumeColumn(t *testing.T) {
	t.Parallel()

	csv := "Date,Open,High,Low,Close\n2024-01-02,1,2,0.5,1.5\n"
	bs, err := ReadCSV(strings.NewReader(csv), "x")
	require.NoError(t, err)
	require.Equal(t, 1, bs.Len())
	assert.Equal(t, 0.0, bs.Bars[0].Volume)
}

func TestReadCSVMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("Date,Close\n2024-01-02,1\n"), "x")
	assert.Error(t, err)
}

func TestReadCSVAllRowsBad(t *testing.T) {
	t.Parallel()

	csv := "Date,Open,High,Low,Close,Volume\nbad,1,1,1,1,1\n"
	_, err := ReadCSV(strings.NewReader(csv), "x")
	assert.Error(t, err)
}

func TestLoadCSVPlain(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	bs, err := LoadCSV(path, "aapl.us")
	require.NoError(t, err)
	assert.Equal(t, 3, bs.Len())
}

func TestLoadCSVGzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bars.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	bs, err := LoadCSV(path, "aapl.us")
	require.NoError(t, err)
	assert.Equal(t, 3, bs.Len())
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), "x")
	assert.Error(t, err)
}
