package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo_Semver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		release bool
	}{
		{"1.4.0", true},
		{"v0.3.1-rc.1", true},
		{"dev", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()
			info := Info{Version: tt.version}

			v, ok := info.Semver()
			assert.Equal(t, tt.release, ok)
			assert.Equal(t, tt.release, info.IsRelease())
			if tt.release {
				require.NotNil(t, v)
			}
		})
	}
}

func TestInfo_Full(t *testing.T) {
	t.Parallel()

	info := Info{Version: "1.4.0", Commit: "abc123", BuildDate: "2026-01-02", GoVersion: "go1.25.5", Platform: "linux/amd64"}
	assert.Equal(t, "1.4.0 (commit abc123, built 2026-01-02, go1.25.5 linux/amd64)", info.Full())

	info.Version = "dev"
	assert.Contains(t, info.Full(), "[development build]")
}

func TestGet_DefaultsToDevelopmentBuild(t *testing.T) {
	t.Parallel()

	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
