package installer

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// Output is the result file written by install-pdm.py.
type Output struct {
	ToolVersion          string `json:"pdm_version"`
	ToolBinary           string `json:"pdm_bin"` // relative to InstallLocation
	InstallPythonVersion string `json:"install_python_version"`
	InstallLocation      string `json:"install_location"`
}

// ReadOutput reads and validates the result file at path.
func ReadOutput(path string) (*Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResult, err, "read installer output")
	}
	return ParseOutput(data)
}

// ParseOutput decodes and validates installer output. Unknown fields are
// ignored so newer installers stay compatible; missing ones are not, and
// neither is anything after the result object.
func ParseOutput(data []byte) (*Output, error) {
	var out Output
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResult, err, "parse installer output")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidResult, "installer output has trailing data after the result object")
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks that every field the installer promises is present.
func (o *Output) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"pdm_version", o.ToolVersion},
		{"pdm_bin", o.ToolBinary},
		{"install_python_version", o.InstallPythonVersion},
		{"install_location", o.InstallLocation},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidResult, "installer output is missing %s", strings.Join(missing, ", "))
	}
	if !filepath.IsAbs(o.InstallLocation) && !strings.HasPrefix(o.InstallLocation, "/") {
		return errors.New(errors.ErrCodeInvalidResult, "install_location is not absolute: %q", o.InstallLocation)
	}
	if err := errors.ValidatePath(o.ToolBinary); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidResult, err, "invalid pdm_bin")
	}
	return nil
}

// BinaryPath returns the absolute path of the pdm executable.
func (o *Output) BinaryPath() string {
	return filepath.Join(o.InstallLocation, filepath.FromSlash(o.ToolBinary))
}

// BinaryDir returns the directory holding the pdm executable.
func (o *Output) BinaryDir() string {
	return filepath.Dir(o.BinaryPath())
}
