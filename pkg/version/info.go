package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	// Unknown is reported for build metadata that is neither linked in nor
	// recorded by the Go toolchain.
	Unknown = "unknown"
	// DevelopmentVersion is the version of local builds.
	DevelopmentVersion = "dev"
)

// Build metadata, set with
// -ldflags="-X github.com/nimburion/searchcriteria/pkg/version.AppVersion=v1.2.3".
// Empty values fall back to the VCS stamp recorded by the Go toolchain.
var (
	AppVersion = DevelopmentVersion
	GitCommit  = Unknown
	BuildTime  = Unknown
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info contains build metadata for searchctl and, when reachable, the search
// cluster it talks to.
type Info struct {
	Service   string `json:"service" yaml:"service"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`

	Cluster *ClusterVersion `json:"cluster,omitempty" yaml:"cluster,omitempty"`
}

// ClusterVersion identifies the search cluster.
type ClusterVersion struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Distribution  string `json:"distribution" yaml:"distribution"`
	Version       string `json:"version" yaml:"version"`
	MappingTypes  bool   `json:"mapping_types" yaml:"mapping_types"`
	TypesMismatch bool   `json:"types_mismatch,omitempty" yaml:"types_mismatch,omitempty"`
}

// Current returns the build metadata of the running binary.
func Current(serviceName string) Info {
	info := Info{
		Service:   orDefault(serviceName, Unknown),
		Version:   orDefault(AppVersion, ""),
		Commit:    orDefault(GitCommit, ""),
		BuildTime: orDefault(BuildTime, ""),
		GoVersion: runtime.Version(),
	}
	if info.Version == DevelopmentVersion {
		info.Version = ""
	}
	if info.Commit == Unknown {
		info.Commit = ""
	}
	if info.BuildTime == Unknown {
		info.BuildTime = ""
	}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.BuildTime == "":
				info.BuildTime = s.Value
			}
		}
	}

	info.Version = orDefault(info.Version, DevelopmentVersion)
	info.Commit = orDefault(info.Commit, Unknown)
	info.BuildTime = orDefault(info.BuildTime, Unknown)
	return info
}

// WithCluster attaches cluster metadata. legacyTypes is the configured
// addressing mode; a cluster whose mapping-type requirement disagrees with it is
// flagged with TypesMismatch.
func (i Info) WithCluster(name, distribution, clusterVersion string, legacyTypes bool) (Info, error) {
	requires, err := RequiresMappingTypes(distribution, clusterVersion)
	if err != nil {
		return i, fmt.Errorf("cluster version: %w", err)
	}
	i.Cluster = &ClusterVersion{
		Name:          name,
		Distribution:  distribution,
		Version:       clusterVersion,
		MappingTypes:  requires,
		TypesMismatch: requires != legacyTypes,
	}
	return i, nil
}

// String returns a log-friendly representation.
func (i Info) String() string {
	s := fmt.Sprintf("%s@%s (commit=%s, build_time=%s)", i.Service, i.Version, i.Commit, i.BuildTime)
	if i.Cluster != nil {
		s += fmt.Sprintf(" %s@%s", i.Cluster.Distribution, i.Cluster.Version)
	}
	return s
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
