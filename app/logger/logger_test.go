package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		opts        Options
		expectedErr bool
	}{
		{name: "Development defaults", opts: Options{}},
		{name: "Production debug", opts: Options{Production: true, Level: "debug"}},
		{name: "Unknown level", opts: Options{Level: "loud"}, expectedErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.opts)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.log")

	log, err := New(Options{Level: "info", File: file})
	require.NoError(t, err)
	log.Debug("dropped below level")
	log.Info("category created")
	_ = log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"category created"`)
	assert.NotContains(t, string(data), "dropped below level")
}
