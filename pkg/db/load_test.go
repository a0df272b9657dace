package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRows feeds canned values through the rowValues interface.
type stubRows struct {
	rows [][]interface{}
	idx  int
	err  error
}

func (s *stubRows) Next() bool {
	if s.idx >= len(s.rows) {
		return false
	}
	s.idx++
	return true
}

func (s *stubRows) Values() ([]interface{}, error) { return s.rows[s.idx-1], nil }

func (s *stubRows) Err() error { return s.err }

func TestScanMatrix(t *testing.T) {
	rows := &stubRows{rows: [][]interface{}{
		{1.5, float32(2), int64(3)},
		{int32(-4), int16(5), 6.0},
	}}

	x, err := scanMatrix(rows)
	require.NoError(t, err)

	r, c := x.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 1.5, x.At(0, 0))
	assert.Equal(t, 2.0, x.At(0, 1))
	assert.Equal(t, -4.0, x.At(1, 0))
	assert.Equal(t, 6.0, x.At(1, 2))
}

func TestScanMatrixRejectsRaggedRows(t *testing.T) {
	rows := &stubRows{rows: [][]interface{}{
		{1.0, 2.0},
		{3.0},
	}}

	_, err := scanMatrix(rows)
	assert.Error(t, err)
}

func TestScanMatrixRejectsNonNumeric(t *testing.T) {
	rows := &stubRows{rows: [][]interface{}{
		{1.0, "west"},
	}}

	_, err := scanMatrix(rows)
	assert.Error(t, err)
}

func TestScanMatrixRejectsEmptyResult(t *testing.T) {
	_, err := scanMatrix(&stubRows{})
	assert.Error(t, err)
}

func TestScanMatrixReportsRowError(t *testing.T) {
	rows := &stubRows{
		rows: [][]interface{}{{1.0}},
		err:  errors.New("connection reset"),
	}

	_, err := scanMatrix(rows)
	assert.Error(t, err)
}

func TestNewConnectionRejectsBadCreds(t *testing.T) {
	_, err := NewConnection(context.Background(), Creds{
		Host:     "localhost",
		Port:     "not a port",
		Username: "user",
		Password: "secret",
		Database: "gcca",
	})
	assert.Error(t, err)
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCSVMatrix(t *testing.T) {
	path := writeCSV(t, "1,2.5\n3,4\n-1,0\n")

	x, err := LoadCSVMatrix(path)
	require.NoError(t, err)

	rows, cols := x.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 2.5, x.At(0, 1))
	assert.Equal(t, -1.0, x.At(2, 0))
}

func TestLoadCSVMatrixRejectsRaggedRows(t *testing.T) {
	path := writeCSV(t, "1,2\n3\n")

	_, err := LoadCSVMatrix(path)
	assert.Error(t, err)
}

func TestLoadCSVMatrixRejectsNonNumeric(t *testing.T) {
	path := writeCSV(t, "1,2\n3,abc\n")

	_, err := LoadCSVMatrix(path)
	assert.Error(t, err)
}

func TestLoadCSVMatrixRejectsEmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := LoadCSVMatrix(path)
	assert.Error(t, err)
}
