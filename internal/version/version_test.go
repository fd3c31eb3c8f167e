package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
	assert.True(t, IsValid(), "configured version must parse as semver")
}

func TestGetBaseVersion(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3+build.42"
	assert.Equal(t, "1.2.3", GetBaseVersion())

	Version = "not-semver"
	assert.Equal(t, "not-semver", GetBaseVersion())
}

func TestGetDetailedVersion(t *testing.T) {
	detailed := GetDetailedVersion()
	assert.Contains(t, detailed, Version)
	assert.Contains(t, detailed, GitCommit)
}
