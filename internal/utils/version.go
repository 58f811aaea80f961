package utils

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DevelopmentVersion is reported when the binary was built without a version.
const DevelopmentVersion = "0.0.0-dev"

// BuildVersion normalises a version injected at link time. Tags such as
// "v1.2" become "1.2.0"; values that are not semantic versions are reported
// as they are.
func BuildVersion(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DevelopmentVersion
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return raw
	}
	return v.String()
}
