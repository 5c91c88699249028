package version

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a semantic version as reported by builds and search clusters.
type SemVer struct {
	Major int64
	Minor int64
	Patch int64

	PreRelease string
	Build      string
}

// Parse reads MAJOR.MINOR.PATCH with an optional "v" prefix, prerelease and
// build metadata, e.g. "7.10.2-SNAPSHOT" or "v1.4.0+abc".
func Parse(raw string) (SemVer, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if s == "" {
		return SemVer{}, fmt.Errorf("invalid semantic version %q: empty", raw)
	}

	var v SemVer
	var hasBuild, hasPre bool
	s, v.Build, hasBuild = strings.Cut(s, "+")
	s, v.PreRelease, hasPre = strings.Cut(s, "-")

	core := strings.Split(s, ".")
	if len(core) != 3 {
		return SemVer{}, fmt.Errorf("invalid semantic version %q: expected MAJOR.MINOR.PATCH", raw)
	}
	for i, dst := range []*int64{&v.Major, &v.Minor, &v.Patch} {
		n, err := numericIdentifier(core[i])
		if err != nil {
			return SemVer{}, fmt.Errorf("invalid semantic version %q: %w", raw, err)
		}
		*dst = n
	}

	if hasPre {
		if err := checkIdentifiers(v.PreRelease, true); err != nil {
			return SemVer{}, fmt.Errorf("invalid prerelease in %q: %w", raw, err)
		}
	}
	if hasBuild {
		if err := checkIdentifiers(v.Build, false); err != nil {
			return SemVer{}, fmt.Errorf("invalid build metadata in %q: %w", raw, err)
		}
	}
	return v, nil
}

func numericIdentifier(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric identifier")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("numeric identifier %q has a leading zero", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("numeric identifier %q is not a number", s)
	}
	return n, nil
}

func checkIdentifiers(dotted string, strictNumbers bool) error {
	for _, id := range strings.Split(dotted, ".") {
		if id == "" {
			return fmt.Errorf("empty identifier")
		}
		for _, r := range id {
			if !(r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				return fmt.Errorf("identifier %q contains %q", id, r)
			}
		}
		if strictNumbers && isNumeric(id) && len(id) > 1 && id[0] == '0' {
			return fmt.Errorf("numeric identifier %q has a leading zero", id)
		}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (v SemVer) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		s += "-" + v.PreRelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0 or 1. Build metadata is ignored and a prerelease sorts
// before its release, so 7.0.0-rc1 < 7.0.0.
func (v SemVer) Compare(other SemVer) int {
	for _, pair := range [][2]int64{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if c := compareInt(pair[0], pair[1]); c != 0 {
			return c
		}
	}
	return comparePreRelease(v.PreRelease, other.PreRelease)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePreRelease(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, bn := isNumeric(as[i]), isNumeric(bs[i])
		switch {
		case an && bn:
			x, _ := strconv.ParseInt(as[i], 10, 64)
			y, _ := strconv.ParseInt(bs[i], 10, 64)
			return compareInt(x, y)
		case an:
			return -1
		case bn:
			return 1
		default:
			return strings.Compare(as[i], bs[i])
		}
	}
	return compareInt(int64(len(as)), int64(len(bs)))
}
