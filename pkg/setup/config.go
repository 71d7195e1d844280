package setup

import (
	"os"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/platform"
	"github.com/matzehuels/setup-pdm/pkg/pyruntime"
)

// DefaultScriptURL is where the bootstrap installer is downloaded from.
const DefaultScriptURL = "https://pdm-project.org/install-pdm.py"

// DefaultPythonVersion is used when no Python version is requested.
const DefaultPythonVersion = "3.x"

// Config holds the inputs of one setup run.
type Config struct {
	Architecture           string // runner arch name; empty uses the host's
	Version                string // PDM version; empty installs the latest
	PythonVersion          string // version spec for the runtime
	UpdatePython           bool
	AllowPythonPrereleases bool
	PyPIMirror             string
	Prerelease             bool
	EnablePEP582           bool

	// CacheAvailable is set when the cache input is enabled and the host
	// reports a cache backend.
	CacheAvailable bool

	WorkDir    string // the installer runs and writes its result file here
	ScriptURL  string
	MatcherDir string // where the problem matcher file is written

	Variant platform.Variant // chosen once, usually platform.Current()
}

// ValidateAndSetDefaults fills unset fields and rejects malformed inputs.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Architecture == "" {
		c.Architecture = pyruntime.HostArch()
	}
	if c.PythonVersion == "" {
		c.PythonVersion = DefaultPythonVersion
	}
	if c.ScriptURL == "" {
		c.ScriptURL = DefaultScriptURL
	}
	if c.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "get working directory")
		}
		c.WorkDir = wd
	}
	if c.MatcherDir == "" {
		c.MatcherDir = os.TempDir()
	}

	if err := errors.ValidateArchitecture(c.Architecture); err != nil {
		return err
	}
	if err := errors.ValidateVersion(c.Version); err != nil {
		return err
	}
	if err := errors.ValidateURL(c.ScriptURL); err != nil {
		return err
	}
	if c.PyPIMirror != "" {
		if err := errors.ValidateURL(c.PyPIMirror); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid pypi-mirror")
		}
	}
	return nil
}
