package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		tc := []struct {
			name    string
			level   string
			want    log.Level
			wantErr bool
		}{
			{name: "debug", level: "debug", want: log.DebugLevel},
			{name: "upper case", level: "WARN", want: log.WarnLevel},
			{name: "empty keeps level", level: "", want: log.InfoLevel},
			{name: "unknown", level: "chatty", want: log.InfoLevel, wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				l := NewLogger(&bytes.Buffer{})
				l.SetLevel(log.InfoLevel)

				err := SetLogLevel(l, tt.level)
				if tt.wantErr {
					assert.ErrorIs(t, err, ErrInvalidConfig)
				} else {
					assert.NoError(t, err)
				}
				assert.Equal(t, tt.want, l.GetLevel())
			})
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "component", "selection")
		l.Info("saved")
		assert.Contains(t, buf.String(), "component=selection")
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "wedx.log")

		l, err := NewFileLogger(path)
		require.NoError(t, err)
		l.Info("hello")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GenerateID())
}
