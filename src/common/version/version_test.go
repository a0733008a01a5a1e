package version

import (
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	v := New()
	if v.Version != DefaultVersion || v.ReleaseVersion != DefaultReleaseVersion {
		t.Fatalf("unexpected defaults %+v", v)
	}
	if v.String() != DefaultVersion {
		t.Errorf("String() = %q", v.String())
	}
	if v.Short() != "v0.0.0" {
		t.Errorf("Short() without commit = %q", v.Short())
	}
}

func TestFromBuild_PartialStamp(t *testing.T) {
	v := FromBuild("1.2.0", "1.2.0", "", "4f9f297")
	if v.BuildDate != DefaultBuildDate {
		t.Errorf("BuildDate = %q, want placeholder", v.BuildDate)
	}
	if v.GitCommit != "4f9f297" {
		t.Errorf("GitCommit = %q", v.GitCommit)
	}
}

func TestInfo_Formats(t *testing.T) {
	v := FromBuild("1.2.0", "1.2.0", "2024-01-15", "4f9f297")

	if got := v.Short(); got != "v1.2.0-4f9f297" {
		t.Errorf("Short() = %q", got)
	}

	full := v.Full()
	for _, want := range []string{"v1.2.0-4f9f297", "2024-01-15", GoVersion()} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q: %q", want, full)
		}
	}

	m := v.Map()
	if m["git_commit"] != "4f9f297" || m["go_version"] != GoVersion() {
		t.Errorf("unexpected Map() %v", m)
	}
}
