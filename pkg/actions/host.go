package actions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// Host is the runner the process is executing under.
type Host struct {
	out    io.Writer
	failed bool
}

// NewHost creates a Host that prints workflow commands to out.
// If out is nil, os.Stdout is used.
func NewHost(out io.Writer) *Host {
	if out == nil {
		out = os.Stdout
	}
	return &Host{out: out}
}

// ExportVariable sets name for this process and for every later step.
func (h *Host) ExportVariable(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return err
	}
	msg, err := keyValueMessage(name, value)
	if err != nil {
		return err
	}
	_, err = issueFileCommand(envFile, msg)
	return err
}

// AddPath puts dir at the front of the executable search path for this
// process and for every later step. A dir already on the process PATH is
// left where it is, so repeated setups do not grow PATH.
func (h *Host) AddPath(dir string) error {
	current := os.Getenv("PATH")
	if slices.Contains(filepath.SplitList(current), dir) {
		return nil
	}
	if _, err := issueFileCommand(pathFile, dir); err != nil {
		return err
	}
	if current == "" {
		return os.Setenv("PATH", dir)
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+current)
}

// SetOutput publishes a step output. Outside a runner the pair is printed
// as name=value.
func (h *Host) SetOutput(name, value string) error {
	msg, err := keyValueMessage(name, value)
	if err != nil {
		return err
	}
	ok, err := issueFileCommand(outputFile, msg)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(h.out, "%s=%s\n", name, value)
	}
	return nil
}

// SaveState stores a value for the action's post step. Outside a runner the
// value is kept in the STATE_<name> variable of this process.
func (h *Host) SaveState(name, value string) error {
	msg, err := keyValueMessage(name, value)
	if err != nil {
		return err
	}
	ok, err := issueFileCommand(stateFile, msg)
	if err != nil {
		return err
	}
	if !ok {
		return os.Setenv("STATE_"+name, value)
	}
	return nil
}

// IsDebug reports whether the runner has step debug logging enabled.
func (h *Host) IsDebug() bool {
	return os.Getenv("RUNNER_DEBUG") == "1"
}

// IsCacheAvailable reports whether the runner exposes a cache service.
func (h *Host) IsCacheAvailable() bool {
	return os.Getenv("ACTIONS_CACHE_URL") != "" || os.Getenv("ACTIONS_RESULTS_URL") != ""
}

// TempDir returns the runner's per-job temporary directory.
func (h *Host) TempDir() string {
	if dir := os.Getenv("RUNNER_TEMP"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Failed reports whether SetFailed was called.
func (h *Host) Failed() bool { return h.failed }

// ExitCode is the process exit status matching the step's outcome.
func (h *Host) ExitCode() int {
	if h.failed {
		return 1
	}
	return 0
}
