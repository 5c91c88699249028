package version

import "strings"

// typelessSince is the first Elasticsearch release that accepts typeless
// document APIs. Every OpenSearch release is typeless.
var typelessSince = SemVer{Major: 7}

// RequiresMappingTypes reports whether a cluster of the given distribution and
// version still addresses documents through mapping types.
func RequiresMappingTypes(distribution, clusterVersion string) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(distribution), "opensearch") {
		return false, nil
	}
	v, err := Parse(clusterVersion)
	if err != nil {
		return false, err
	}
	return v.Compare(typelessSince) < 0, nil
}
