package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })

	tc := []struct {
		name    string
		goos    string
		want    string
		wantErr bool
	}{
		{name: "darwin", goos: "darwin", want: "open"},
		{name: "linux", goos: "linux", want: "xdg-open"},
		{name: "windows", goos: "windows", want: "rundll32"},
		{name: "plan9", goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BROWSER", "")
			getRuntime = func() string { return tt.goos }

			cmd, err := browserCommand(context.Background(), "http://localhost:3000")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Args[0])
			assert.Equal(t, "http://localhost:3000", cmd.Args[len(cmd.Args)-1])
		})
	}

	t.Run("BROWSER overrides platform", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		cmd, err := browserCommand(context.Background(), "http://x")
		require.NoError(t, err)
		assert.Equal(t, "firefox", cmd.Args[0])
	})
}
