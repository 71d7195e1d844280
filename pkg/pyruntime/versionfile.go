package pyruntime

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// ResolveVersionInput picks the Python version spec from the python-version
// and python-version-file inputs. An explicit version wins over the file.
// It returns "" when neither is set.
func ResolveVersionInput(version, versionFile string, logger *log.Logger) (string, error) {
	if logger == nil {
		logger = log.Default()
	}
	if version != "" {
		if versionFile != "" {
			logger.Warn("both python-version and python-version-file inputs are specified, only python-version will be used")
		}
		return version, nil
	}
	if versionFile == "" {
		return "", nil
	}
	v, err := ReadVersionFile(versionFile)
	if err != nil {
		return "", err
	}
	logger.Info("resolved python version from file", "file", versionFile, "version", v)
	return v, nil
}

// ReadVersionFile reads a version spec from a .python-version style file
// (first non-blank, non-comment line) or from the requires-python field of a
// pyproject.toml.
func ReadVersionFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodeInvalidInput, "the specified python version file at %s doesn't exist", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read python version file")
	}

	if filepath.Base(path) == "pyproject.toml" {
		return requiresPython(data, path)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "no python version found in %s", path)
}

func requiresPython(data []byte, path string) (string, error) {
	var pyproject struct {
		Project struct {
			RequiresPython string `toml:"requires-python"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if v := strings.TrimSpace(pyproject.Project.RequiresPython); v != "" {
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "%s has no project.requires-python", path)
}
