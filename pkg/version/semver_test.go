package version

import "testing"

func mustParse(t *testing.T, raw string) SemVer {
	t.Helper()
	v, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return v
}

func TestParseClusterVersions(t *testing.T) {
	tests := map[string]SemVer{
		"2.11.1":             {Major: 2, Minor: 11, Patch: 1},
		"v8.12.0":            {Major: 8, Minor: 12},
		"7.10.2-SNAPSHOT":    {Major: 7, Minor: 10, Patch: 2, PreRelease: "SNAPSHOT"},
		"8.0.0-alpha-1":      {Major: 8, PreRelease: "alpha-1"},
		"1.0.0-rc.1+exp.sha": {Major: 1, PreRelease: "rc.1", Build: "exp.sha"},
	}
	for raw, want := range tests {
		got := mustParse(t, raw)
		if got != want {
			t.Errorf("Parse(%q) = %#v, want %#v", raw, got, want)
		}
		if s := got.String(); s != want.String() {
			t.Errorf("%q renders as %q", raw, s)
		}
	}
}

func TestParseRejectsMalformedVersions(t *testing.T) {
	for _, raw := range []string{
		"", "  ", "7", "7.10", "v7.10", "7.10.2.1", "07.1.0", "7.x.0",
		"1.0.0-01", "1.0.0-", "1.0.0+", "7.0.0-rc..1", "7.0.0-rc_1",
	} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", raw)
		}
	}
}

func TestCompareOrdersReleasesAfterPrereleases(t *testing.T) {
	ordered := []string{
		"6.8.23",
		"7.0.0-alpha",
		"7.0.0-alpha.1",
		"7.0.0-alpha.beta",
		"7.0.0-beta",
		"7.0.0-rc1",
		"7.0.0",
		"7.0.1",
		"7.10.0",
		"8.0.0",
	}
	for i := 1; i < len(ordered); i++ {
		lo, hi := mustParse(t, ordered[i-1]), mustParse(t, ordered[i])
		if lo.Compare(hi) != -1 || hi.Compare(lo) != 1 {
			t.Errorf("expected %s < %s", lo, hi)
		}
	}
	if c := mustParse(t, "1.0.0+build.1").Compare(mustParse(t, "1.0.0+build.2")); c != 0 {
		t.Errorf("build metadata must not affect order, got %d", c)
	}
}

func TestRequiresMappingTypes(t *testing.T) {
	tests := []struct {
		distribution string
		version      string
		want         bool
	}{
		{"opensearch", "2.11.1", false},
		{"OpenSearch", "1.0.0", false},
		{"elasticsearch", "6.8.23", true},
		{"elasticsearch", "7.0.0-rc1", true},
		{"elasticsearch", "7.17.9", false},
		{"elasticsearch", "8.12.0", false},
	}
	for _, tt := range tests {
		got, err := RequiresMappingTypes(tt.distribution, tt.version)
		if err != nil {
			t.Fatalf("RequiresMappingTypes(%s, %s): %v", tt.distribution, tt.version, err)
		}
		if got != tt.want {
			t.Errorf("RequiresMappingTypes(%s, %s) = %v, want %v", tt.distribution, tt.version, got, tt.want)
		}
	}

	if _, err := RequiresMappingTypes("elasticsearch", "six"); err == nil {
		t.Error("expected parse error")
	}
}
