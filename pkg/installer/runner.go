package installer

import (
	"bytes"
	"context"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/platform"
)

// Exporter sets environment variables for the current process and every
// later step of the job.
type Exporter interface {
	ExportVariable(name, value string) error
}

// Runner executes the bootstrap installer with a Python interpreter.
type Runner struct {
	Variant platform.Variant
	Env     Exporter
	Stdout  io.Writer // installer output, passed through unmodified
	Stderr  io.Writer
	Logger  *log.Logger
}

// NewRunner creates a Runner for variant that exports through env and
// streams installer output to the process's stdout and stderr.
// If logger is nil, log.Default() is used.
func NewRunner(variant platform.Variant, env Exporter, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Variant: variant,
		Env:     env,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Logger:  logger,
	}
}

// Run exports the invocation's variables and the platform's pre-install
// patches, then runs the interpreter with script on stdin in inv.Dir and
// waits for it.
// pythonBinDir is where the resolved interpreter lives; when empty, or when
// it holds no interpreter, the executable is looked up on PATH.
//
// A nonzero exit is returned as [errors.ErrCodeInstallerFailed]. There is no
// retry and no timeout beyond ctx.
func (r *Runner) Run(ctx context.Context, pythonBinDir string, inv Invocation, script []byte) error {
	for _, v := range inv.Env {
		r.Logger.Debug("exporting", "name", v.Name)
		if err := r.Env.ExportVariable(v.Name, v.Value); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "export %s", v.Name)
		}
	}
	patches := r.Variant.PreInstallEnv()
	for _, name := range slices.Sorted(maps.Keys(patches)) {
		if err := r.Env.ExportVariable(name, patches[name]); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "export %s", name)
		}
	}

	python, err := r.python(pythonBinDir)
	if err != nil {
		return err
	}
	r.Logger.Debug("running installer", "python", python, "args", inv.Args, "dir", inv.Dir)

	cmd := exec.CommandContext(ctx, python, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = bytes.NewReader(script)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return errors.New(errors.ErrCodeInstallerFailed, "%s exited with code %d", filepath.Base(python), exitErr.ExitCode())
		}
		return errors.Wrap(errors.ErrCodeInstallerFailed, err, "failed to execute %s", python)
	}
	return nil
}

// python resolves the interpreter executable for the variant.
func (r *Runner) python(binDir string) (string, error) {
	name := r.Variant.PythonExecutable()
	if binDir != "" {
		candidate := filepath.Join(binDir, name+r.Variant.ExecutableSuffix())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRuntimeNotFound, err, "%s not found", name)
	}
	return path, nil
}
