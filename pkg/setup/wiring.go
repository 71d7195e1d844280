package setup

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/installer"
	"github.com/matzehuels/setup-pdm/pkg/platform"
)

// Output names.
const (
	OutputPDMVersion = "pdm-version"
	OutputPDMBin     = "pdm-bin"
)

const matcherFile = "python.json"

//go:embed matchers/python.json
var pythonMatcher []byte

// Host is the set of job effects wiring needs.
type Host interface {
	ExportVariable(name, value string) error
	AddPath(dir string) error
	SetOutput(name, value string) error
	AddMatcher(path string)
}

// StepOutput is a named value published for later workflow steps.
type StepOutput struct {
	Name  string
	Value string
}

// Wiring is the planned set of environment changes for an installed PDM.
type Wiring struct {
	PathDir    string
	Env        []installer.EnvVar
	Outputs    []StepOutput
	MatcherDir string             // empty skips problem matcher registration
}

// PlanWiring computes the environment changes for out without touching the
// host. A malformed install_python_version fails when PEP 582 is enabled on
// a POSIX variant.
func PlanWiring(out installer.Output, enablePEP582 bool, variant platform.Variant) (*Wiring, error) {
	if err := out.Validate(); err != nil {
		return nil, err
	}
	w := &Wiring{
		PathDir: out.BinaryDir(),
		Outputs: []StepOutput{
			{Name: OutputPDMVersion, Value: out.ToolVersion},
			{Name: OutputPDMBin, Value: out.BinaryPath()},
		},
	}
	if enablePEP582 {
		path, err := variant.PEP582Path(out.InstallLocation, out.InstallPythonVersion)
		if err != nil {
			return nil, err
		}
		w.Env = append(w.Env, installer.EnvVar{Name: "PYTHONPATH", Value: path})
	}
	return w, nil
}

// Apply performs the planned changes. The problem matcher is written first
// since it is the only step that touches the filesystem.
func (w *Wiring) Apply(host Host) error {
	var matcherPath string
	if w.MatcherDir != "" {
		matcherPath = filepath.Join(w.MatcherDir, matcherFile)
		if err := os.MkdirAll(w.MatcherDir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeWiringFailed, err, "create matcher directory")
		}
		if err := os.WriteFile(matcherPath, pythonMatcher, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeWiringFailed, err, "write problem matcher")
		}
	}

	if err := host.AddPath(w.PathDir); err != nil {
		return errors.Wrap(errors.ErrCodeWiringFailed, err, "add %s to PATH", w.PathDir)
	}
	for _, v := range w.Env {
		if err := host.ExportVariable(v.Name, v.Value); err != nil {
			return errors.Wrap(errors.ErrCodeWiringFailed, err, "export %s", v.Name)
		}
	}
	for _, o := range w.Outputs {
		if err := host.SetOutput(o.Name, o.Value); err != nil {
			return errors.Wrap(errors.ErrCodeWiringFailed, err, "set output %s", o.Name)
		}
	}
	if matcherPath != "" {
		host.AddMatcher(matcherPath)
	}
	return nil
}
