package actions

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// File command environment variables.
const (
	envFile    = "GITHUB_ENV"
	pathFile   = "GITHUB_PATH"
	outputFile = "GITHUB_OUTPUT"
	stateFile  = "GITHUB_STATE"
)

// issueFileCommand appends message to the file named by the environment
// variable command. It reports false when the variable is unset.
func issueFileCommand(command, message string) (bool, error) {
	path := os.Getenv(command)
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return true, errors.Wrap(errors.ErrCodeInternal, err, "missing file at path %s for %s", path, command)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return true, errors.Wrap(errors.ErrCodeInternal, err, "open %s", command)
	}
	defer f.Close()
	if _, err := f.WriteString(message + "\n"); err != nil {
		return true, errors.Wrap(errors.ErrCodeInternal, err, "write %s", command)
	}
	return true, nil
}

// keyValueMessage renders a name/value pair in the heredoc format the runner
// parses. The delimiter is random, so a value can never terminate the block
// early; it is still checked because a colliding value would corrupt the
// file.
func keyValueMessage(name, value string) (string, error) {
	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(name, delimiter) {
		return "", errors.New(errors.ErrCodeInvalidInput, "name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return "", errors.New(errors.ErrCodeInvalidInput, "value should not contain the delimiter %q", delimiter)
	}
	return fmt.Sprintf("%s<<%s\n%s\n%s", name, delimiter, value, delimiter), nil
}
