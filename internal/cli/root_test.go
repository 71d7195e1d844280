package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/actions"
	"github.com/matzehuels/setup-pdm/pkg/buildinfo"
	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/setup"
)

func testCLI(out io.Writer) *CLI {
	return &CLI{
		Logger: newLogger(io.Discard, log.InfoLevel),
		Host:   actions.NewHost(out),
		Out:    out,
	}
}

func clearInputs(t *testing.T) {
	t.Helper()
	for name := range inputDefaults {
		t.Setenv(actions.InputEnvName(name), "")
		os.Unsetenv(actions.InputEnvName(name))
	}
}

func TestBuildConfigDefaults(t *testing.T) {
	clearInputs(t)
	t.Setenv("RUNNER_TEMP", t.TempDir())

	c := testCLI(io.Discard)
	cfg, cacheEnabled, err := c.buildConfig(actions.NewInputs(inputDefaults))
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cacheEnabled {
		t.Error("cache enabled by default")
	}
	if !cfg.UpdatePython || cfg.EnablePEP582 || cfg.Prerelease || cfg.AllowPythonPrereleases {
		t.Errorf("unexpected bool defaults: %+v", cfg)
	}
	if cfg.PythonVersion != setup.DefaultPythonVersion {
		t.Errorf("PythonVersion = %q", cfg.PythonVersion)
	}
	if cfg.ScriptURL != setup.DefaultScriptURL {
		t.Errorf("ScriptURL = %q", cfg.ScriptURL)
	}
	if cfg.MatcherDir != os.Getenv("RUNNER_TEMP") {
		t.Errorf("MatcherDir = %q", cfg.MatcherDir)
	}
}

func TestBuildConfigFromEnv(t *testing.T) {
	clearInputs(t)
	t.Setenv("INPUT_VERSION", "2.10.0")
	t.Setenv("INPUT_PYTHON-VERSION", "3.11")
	t.Setenv("INPUT_ARCHITECTURE", "arm64")
	t.Setenv("INPUT_PYPI-MIRROR", "https://mirror.example/simple")
	t.Setenv("INPUT_ENABLE-PEP582", "True")
	t.Setenv("INPUT_CACHE", "TRUE")

	cfg, cacheEnabled, err := testCLI(io.Discard).buildConfig(actions.NewInputs(inputDefaults))
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Version != "2.10.0" || cfg.PythonVersion != "3.11" || cfg.Architecture != "arm64" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PyPIMirror != "https://mirror.example/simple" || !cfg.EnablePEP582 || !cacheEnabled {
		t.Errorf("cfg = %+v cache=%v", cfg, cacheEnabled)
	}
}

func TestBuildConfigVersionFile(t *testing.T) {
	clearInputs(t)
	file := filepath.Join(t.TempDir(), ".python-version")
	if err := os.WriteFile(file, []byte("3.10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INPUT_PYTHON-VERSION-FILE", file)

	cfg, _, err := testCLI(io.Discard).buildConfig(actions.NewInputs(inputDefaults))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PythonVersion != "3.10" {
		t.Errorf("PythonVersion = %q", cfg.PythonVersion)
	}
}

func TestBuildConfigInvalid(t *testing.T) {
	tests := []struct {
		name, env, value string
		code             errors.Code
	}{
		{"bool spelling", "INPUT_PRERELEASE", "yes", errors.ErrCodeInvalidInput},
		{"architecture", "INPUT_ARCHITECTURE", "sparc", errors.ErrCodeInvalidInput},
		{"version", "INPUT_VERSION", "latest", errors.ErrCodeInvalidVersion},
		{"mirror", "INPUT_PYPI-MIRROR", "mirror.local", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearInputs(t)
			t.Setenv(tt.env, tt.value)
			_, _, err := testCLI(io.Discard).buildConfig(actions.NewInputs(inputDefaults))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRootCommandFlagOverridesInput(t *testing.T) {
	clearInputs(t)
	t.Setenv("INPUT_ENABLE-PEP582", "maybe")

	var out bytes.Buffer
	c := testCLI(&out)
	root := c.RootCommand()
	root.SetArgs([]string{"--enable-pep582=false", "--architecture", "sparc"})
	err := root.Execute()
	// The flag fixes enable-pep582, so the architecture is what fails.
	if !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), "sparc") {
		t.Fatalf("err = %v", err)
	}
}

func TestFail(t *testing.T) {
	var out bytes.Buffer
	c := testCLI(&out)
	c.Fail(errors.New(errors.ErrCodeInstallerFailed, "python3 exited with code 1"))

	if c.ExitCode() != 1 {
		t.Errorf("ExitCode = %d", c.ExitCode())
	}
	if !strings.Contains(out.String(), "::error::python3 exited with code 1") {
		t.Errorf("output = %q", out.String())
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := testCLI(io.Discard).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), buildinfo.Version) {
		t.Errorf("output = %q", out.String())
	}
}
