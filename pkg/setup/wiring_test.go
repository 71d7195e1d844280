package setup

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/installer"
	"github.com/matzehuels/setup-pdm/pkg/platform"
)

func stubOutput() installer.Output {
	return installer.Output{
		ToolVersion:          "2.1.0",
		ToolBinary:           "bin/pdm",
		InstallPythonVersion: "3.11.2",
		InstallLocation:      "/opt/py",
	}
}

func TestPlanWiring(t *testing.T) {
	w, err := PlanWiring(stubOutput(), false, platform.LinuxVariant)
	if err != nil {
		t.Fatalf("PlanWiring: %v", err)
	}
	if w.PathDir != filepath.Join("/opt/py", "bin") {
		t.Errorf("PathDir = %q", w.PathDir)
	}
	if len(w.Env) != 0 {
		t.Errorf("Env = %v", w.Env)
	}
	want := []StepOutput{
		{Name: OutputPDMVersion, Value: "2.1.0"},
		{Name: OutputPDMBin, Value: filepath.Join("/opt/py", "bin", "pdm")},
	}
	if !slices.Equal(w.Outputs, want) {
		t.Errorf("Outputs = %v", w.Outputs)
	}
}

func TestPlanWiringPEP582(t *testing.T) {
	tests := []struct {
		name    string
		variant platform.Variant
		version string
		want    string
		code    errors.Code
	}{
		{"posix", platform.LinuxVariant, "3.11.2", filepath.Join("/opt/py", "lib", "python3.11", "site-packages", "pdm", "pep582"), ""},
		{"posix prerelease", platform.DarwinVariant, "3.13.0-rc.1", filepath.Join("/opt/py", "lib", "python3.13", "site-packages", "pdm", "pep582"), ""},
		{"windows ignores version", platform.WindowsVariant, "garbage", filepath.Join("/opt/py", "Lib", "site-packages", "pdm", "pep582"), ""},
		{"posix malformed", platform.LinuxVariant, "3.11", "", errors.ErrCodeWiringFailed},
		{"posix garbage", platform.LinuxVariant, "three", "", errors.ErrCodeWiringFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := stubOutput()
			out.InstallPythonVersion = tt.version
			w, err := PlanWiring(out, true, tt.variant)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(w.Env) != 1 || w.Env[0].Name != "PYTHONPATH" || w.Env[0].Value != tt.want {
				t.Errorf("Env = %v, want PYTHONPATH=%s", w.Env, tt.want)
			}
		})
	}
}

func TestPlanWiringRejectsInvalidOutput(t *testing.T) {
	out := stubOutput()
	out.InstallLocation = ""
	if _, err := PlanWiring(out, false, platform.LinuxVariant); !errors.Is(err, errors.ErrCodeInvalidResult) {
		t.Errorf("err = %v", err)
	}
}

func TestWiringApply(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "matchers")
	w, err := PlanWiring(stubOutput(), true, platform.LinuxVariant)
	if err != nil {
		t.Fatal(err)
	}
	w.MatcherDir = dir

	host := newRecordingHost()
	if err := w.Apply(host); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !slices.Equal(host.paths, []string{filepath.Join("/opt/py", "bin")}) {
		t.Errorf("paths = %v", host.paths)
	}
	if host.env["PYTHONPATH"] == "" {
		t.Error("PYTHONPATH not exported")
	}
	if host.outputs[OutputPDMBin] != filepath.Join("/opt/py", "bin", "pdm") {
		t.Errorf("outputs = %v", host.outputs)
	}
	matcher := filepath.Join(dir, "python.json")
	if !slices.Equal(host.matchers, []string{matcher}) {
		t.Errorf("matchers = %v", host.matchers)
	}
	if _, err := os.Stat(matcher); err != nil {
		t.Errorf("matcher not written: %v", err)
	}
}

func TestWiringApplyMatcherFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := PlanWiring(stubOutput(), false, platform.LinuxVariant)
	if err != nil {
		t.Fatal(err)
	}
	w.MatcherDir = filepath.Join(blocker, "sub")

	host := newRecordingHost()
	if err := w.Apply(host); !errors.Is(err, errors.ErrCodeWiringFailed) {
		t.Fatalf("err = %v", err)
	}
	if host.published() {
		t.Error("host effects after matcher failure")
	}
}
