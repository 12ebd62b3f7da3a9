// Package version parses the dotted package versions found in project
// manifests and dependency constraints, such as "24.6.0", "3.13",
// "0.7.2rc1", or "24.*".
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Wildcard matches any version.
const Wildcard = "*"

// versionRegex captures the numeric release segments, an optional trailing
// ".*" wildcard, and an optional pre/post-release suffix with its separator.
var versionRegex = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:(\.\*)|([-+_.]?[a-zA-Z][a-zA-Z0-9._]*))?$`)

// Version is a parsed package version.
type Version struct {
	Segments []int  // Release segments, e.g. [24 6 0]
	Suffix   string // Pre/post-release tag including its separator, e.g. "rc1" or "-dev"
	Wildcard bool   // Trailing ".*", or the bare "*"
}

// Validate checks that v is a well-formed package version.
func Validate(v string) error {
	_, err := Parse(v)
	return err
}

// Parse parses a package version string.
func Parse(v string) (*Version, error) {
	if v == Wildcard {
		return &Version{Wildcard: true}, nil
	}

	match := versionRegex.FindStringSubmatch(v)
	if match == nil {
		return nil, fmt.Errorf("invalid version format: %q", v)
	}

	parts := strings.Split(match[1], ".")
	segments := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid version segment %q in %q", p, v)
		}
		segments[i] = n
	}

	return &Version{
		Segments: segments,
		Wildcard: match[2] != "",
		Suffix:   match[3],
	}, nil
}

// String returns the canonical form: segments without leading zeros,
// followed by the wildcard or suffix.
func (v *Version) String() string {
	if len(v.Segments) == 0 {
		if v.Wildcard {
			return Wildcard
		}
		return ""
	}

	parts := make([]string, len(v.Segments))
	for i, s := range v.Segments {
		parts[i] = strconv.Itoa(s)
	}
	result := strings.Join(parts, ".")
	if v.Wildcard {
		return result + ".*"
	}
	return result + v.Suffix
}
