package installer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

const validOutput = `{
  "pdm_version": "2.1.0",
  "pdm_bin": "bin/pdm",
  "install_python_version": "3.12.0",
  "install_location": "/opt/py",
  "extra": "ignored"
}`

func TestParseOutput(t *testing.T) {
	out, err := ParseOutput([]byte(validOutput))
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if out.ToolVersion != "2.1.0" || out.ToolBinary != "bin/pdm" ||
		out.InstallPythonVersion != "3.12.0" || out.InstallLocation != "/opt/py" {
		t.Errorf("unexpected output %+v", out)
	}
	if got := out.BinaryPath(); got != filepath.Join("/opt/py", "bin", "pdm") {
		t.Errorf("BinaryPath = %q", got)
	}
	if got := out.BinaryDir(); got != filepath.Join("/opt/py", "bin") {
		t.Errorf("BinaryDir = %q", got)
	}
	if _, err := ParseOutput([]byte(validOutput + "\n\n")); err != nil {
		t.Errorf("trailing whitespace rejected: %v", err)
	}
}

func TestParseOutput_MissingFields(t *testing.T) {
	fields := []string{"pdm_version", "pdm_bin", "install_python_version", "install_location"}
	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			var lines []string
			for _, line := range strings.Split(validOutput, "\n") {
				if !strings.Contains(line, `"`+field+`"`) {
					lines = append(lines, line)
				}
			}
			_, err := ParseOutput([]byte(strings.Join(lines, "\n")))
			if !errors.Is(err, errors.ErrCodeInvalidResult) {
				t.Fatalf("expected INVALID_RESULT, got %v", err)
			}
			if !strings.Contains(err.Error(), field) {
				t.Errorf("error should name %s: %v", field, err)
			}
		})
	}
}

func TestParseOutput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not json", "Successfully installed pdm"},
		{"wrong type", `{"pdm_version": 2}`},
		{"blank field", `{"pdm_version": " ", "pdm_bin": "bin/pdm", "install_python_version": "3.12.0", "install_location": "/opt/py"}`},
		{"relative location", `{"pdm_version": "2.1.0", "pdm_bin": "bin/pdm", "install_python_version": "3.12.0", "install_location": "opt/py"}`},
		{"trailing text", `{"pdm_version": "2.1.0", "pdm_bin": "bin/pdm", "install_python_version": "3.12.0", "install_location": "/opt/py"} not-json`},
		{"second object", `{"pdm_version": "2.1.0", "pdm_bin": "bin/pdm", "install_python_version": "3.12.0", "install_location": "/opt/py"}{}`},
		{"escaping binary", `{"pdm_version": "2.1.0", "pdm_bin": "../../usr/bin/pdm", "install_python_version": "3.12.0", "install_location": "/opt/py"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOutput([]byte(tt.data)); !errors.Is(err, errors.ErrCodeInvalidResult) {
				t.Errorf("expected INVALID_RESULT, got %v", err)
			}
		})
	}
}

func TestReadOutput(t *testing.T) {
	dir := t.TempDir()

	if _, err := ReadOutput(filepath.Join(dir, OutputFile)); !errors.Is(err, errors.ErrCodeInvalidResult) {
		t.Errorf("missing file: expected INVALID_RESULT, got %v", err)
	}

	path := filepath.Join(dir, OutputFile)
	if err := os.WriteFile(path, []byte(validOutput), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := ReadOutput(path)
	if err != nil {
		t.Fatalf("ReadOutput: %v", err)
	}
	if out.ToolVersion != "2.1.0" {
		t.Errorf("ToolVersion = %q", out.ToolVersion)
	}
}
