package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.String(), "tabeline")
	assert.Contains(t, info.String(), "Go Version:")
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: "2024-01-01T00:00:00Z",
		GitCommit: "abc123def456",
		GoVersion: "go1.24.4",
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0\n")
	assert.Contains(t, str, "Build Date: 2024-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d\n")
	assert.Contains(t, str, "Go Version: go1.24.4")
}

func TestBuildInfoStringUnknown(t *testing.T) {
	info := BuildInfo{
		Version:   "dev",
		BuildDate: unknownValue,
		GitCommit: "abc123-dirty",
		Dirty:     true,
	}

	str := info.String()
	assert.Contains(t, str, "Version: dev (dirty)")
	assert.Contains(t, str, "Git Commit: abc123\n")
	assert.NotContains(t, str, "Build Date")
}

func TestShort(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v0.3.0"
	assert.Equal(t, "tabeline v0.3.0", Short())
}

func TestIsRelease(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version  string
		expected bool
	}{
		{"v1.0.0", true},
		{"1.0.0", true},
		{"dev", false},
		{"v1.0.0-rc.1", false},
		{"v1.0.0-dirty", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			assert.Equal(t, tt.expected, IsRelease())
		})
	}
}
