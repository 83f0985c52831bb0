package update

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrVersion is returned when parsing a malformed version.
var ErrVersion = errors.New("malformed version")

// Version is a release version made of a major, minor and build number.
type Version struct {
	Major, Minor, Build int
}

// ParseVersion parses a version such as "2.3.1". A leading "v" is accepted and
// a missing build number is read as 0.
func ParseVersion(s string) (Version, error) {
	raw := s
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if !semver.IsValid("v" + s) {
		return Version{}, fmt.Errorf("parse version %q: %w", raw, ErrVersion)
	}
	// Pre-release and build metadata carry no ordering here.
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("parse version %q: %w", raw, ErrVersion)
	}
	var v Version
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Build}[:len(parts)] {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return Version{}, fmt.Errorf("parse version %q: %w", raw, ErrVersion)
		}
		*dst = n
	}
	return v, nil
}

// Compare returns -1, 0 or 1 depending on whether v is older than, equal to
// or newer than o. Major numbers are compared first, then minor numbers and
// finally build numbers.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Build - o.Build} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// String returns the version as "major.minor.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}
