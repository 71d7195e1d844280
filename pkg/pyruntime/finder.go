package pyruntime

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/platform"
)

// Request describes the interpreter to find.
type Request struct {
	Spec              string // version spec; empty means "3.x"
	Arch              string
	AllowPrereleases  bool
	UpdateEnvironment bool // export pythonLocation & co. and put the interpreter on PATH
}

// Runtime is a located interpreter.
type Runtime struct {
	Version string // e.g. "3.12.0"
	Prefix  string // installation root (sys.prefix)
	BinDir  string // directory holding the interpreter executable
}

// Environment applies process-wide environment changes.
type Environment interface {
	ExportVariable(name, value string) error
	AddPath(dir string) error
}

// probeFunc asks an interpreter for its version and prefix.
type probeFunc func(ctx context.Context, exe string) (version, prefix string, err error)

// Finder locates interpreters in the tool cache and on PATH.
type Finder struct {
	ToolCache string // RUNNER_TOOL_CACHE; empty skips the tool cache
	Variant   platform.Variant
	Env       Environment
	Logger    *log.Logger

	probe    probeFunc
	lookPath func(string) (string, error)
}

// NewFinder creates a Finder for variant. The tool cache location is read
// from RUNNER_TOOL_CACHE. If logger is nil, log.Default() is used.
func NewFinder(variant platform.Variant, env Environment, logger *log.Logger) *Finder {
	if logger == nil {
		logger = log.Default()
	}
	return &Finder{
		ToolCache: os.Getenv("RUNNER_TOOL_CACHE"),
		Variant:   variant,
		Env:       env,
		Logger:    logger,
		probe:     probePython,
		lookPath:  exec.LookPath,
	}
}

// Find returns the newest interpreter satisfying req.
func (f *Finder) Find(ctx context.Context, req Request) (*Runtime, error) {
	specText := req.Spec
	if specText == "" {
		specText = "3.x"
	}
	spec, err := ParseSpec(specText)
	if err != nil {
		return nil, err
	}

	rt, err := f.fromToolCache(spec, req)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		rt = f.fromPath(ctx, spec, req)
	}
	if rt == nil {
		return nil, errors.New(errors.ErrCodeRuntimeNotFound,
			"Python version %s with arch %s not found in the tool cache or on PATH", specText, req.Arch)
	}
	f.Logger.Info("resolved python", "version", rt.Version, "prefix", rt.Prefix)

	if req.UpdateEnvironment {
		if err := f.updateEnvironment(rt); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// fromToolCache scans <ToolCache>/Python/<version>/<arch> for completed
// installs and returns the highest matching one, or nil.
func (f *Finder) fromToolCache(spec *Spec, req Request) (*Runtime, error) {
	if f.ToolCache == "" {
		return nil, nil
	}
	root := filepath.Join(f.ToolCache, "Python")
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRuntimeNotFound, err, "read tool cache")
	}

	var best string
	for _, e := range entries {
		if !e.IsDir() || !spec.Match(e.Name(), req.AllowPrereleases) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, req.Arch+".complete")); err != nil {
			continue
		}
		if info, err := os.Stat(filepath.Join(dir, req.Arch)); err != nil || !info.IsDir() {
			continue
		}
		if best == "" || semver.Compare("v"+NormalizeVersion(e.Name()), "v"+NormalizeVersion(best)) > 0 {
			best = e.Name()
		}
	}
	if best == "" {
		f.Logger.Debug("no matching python in tool cache", "spec", spec, "arch", req.Arch)
		return nil, nil
	}

	prefix := filepath.Join(root, best, req.Arch)
	return &Runtime{
		Version: NormalizeVersion(best),
		Prefix:  prefix,
		BinDir:  f.Variant.PythonBinDirs(prefix)[0],
	}, nil
}

// fromPath probes the interpreter on PATH and returns it if it matches.
func (f *Finder) fromPath(ctx context.Context, spec *Spec, req Request) *Runtime {
	exe, err := f.lookPath(f.Variant.PythonExecutable())
	if err != nil {
		return nil
	}
	version, prefix, err := f.probe(ctx, exe)
	if err != nil {
		f.Logger.Debug("probe failed", "python", exe, "err", err)
		return nil
	}
	if !spec.Match(version, req.AllowPrereleases) {
		f.Logger.Debug("system python does not match", "python", exe, "version", version, "spec", spec)
		return nil
	}
	return &Runtime{
		Version: NormalizeVersion(version),
		Prefix:  prefix,
		BinDir:  filepath.Dir(exe),
	}
}

// updateEnvironment exports the variables setup-python exports for a
// selected interpreter and puts its directories on PATH.
func (f *Finder) updateEnvironment(rt *Runtime) error {
	vars := [][2]string{
		{"pythonLocation", rt.Prefix},
		{"Python_ROOT_DIR", rt.Prefix},
		{"Python2_ROOT_DIR", rt.Prefix},
		{"Python3_ROOT_DIR", rt.Prefix},
	}
	if !f.Variant.IsWindows() {
		vars = append(vars, [2]string{"PKG_CONFIG_PATH", filepath.Join(rt.Prefix, "lib", "pkgconfig")})
	}
	for _, kv := range vars {
		if err := f.Env.ExportVariable(kv[0], kv[1]); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "export %s", kv[0])
		}
	}

	// AddPath prepends, so add in reverse to keep the interpreter dir first.
	dirs := f.Variant.PythonBinDirs(rt.Prefix)
	if !slices.Contains(dirs, rt.BinDir) {
		dirs = append([]string{rt.BinDir}, dirs...)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := f.Env.AddPath(dirs[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "add %s to PATH", dirs[i])
		}
	}
	return nil
}

const probeScript = "import platform, sys; print(platform.python_version()); print(sys.prefix)"

func probePython(ctx context.Context, exe string) (string, string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, "-c", probeScript)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", "", err
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) < 2 {
		return "", "", errors.New(errors.ErrCodeRuntimeNotFound, "unexpected probe output from %s: %q", exe, stdout.String())
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}
