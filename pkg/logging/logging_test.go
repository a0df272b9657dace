package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New("info", "json")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := New("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("invalid", "json")
	assert.Error(t, err)
}
