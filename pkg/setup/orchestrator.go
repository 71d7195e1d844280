package setup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/installer"
	"github.com/matzehuels/setup-pdm/pkg/observability"
	"github.com/matzehuels/setup-pdm/pkg/pyruntime"
)

// State is a stage of the setup state machine.
type State int

const (
	StateIdle State = iota
	StateResolvingRuntime
	StateInvoking
	StateParsingResult
	StateWiring
	StateCaching
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateResolvingRuntime: "resolving-runtime",
	StateInvoking:         "invoking",
	StateParsingResult:    "parsing-result",
	StateWiring:           "wiring",
	StateCaching:          "caching",
	StateDone:             "done",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// RuntimeFinder locates a Python interpreter.
type RuntimeFinder interface {
	Find(ctx context.Context, req pyruntime.Request) (*pyruntime.Runtime, error)
}

// ScriptFetcher downloads the installer script.
type ScriptFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// InstallerRunner runs the installer script with an interpreter.
type InstallerRunner interface {
	Run(ctx context.Context, pythonBinDir string, inv installer.Invocation, script []byte) error
}

// Dispatcher hands a finished installation to the dependency cache.
type Dispatcher interface {
	Cache(ctx context.Context, pdmBin, pythonVersion string) error
}

// Deps are the collaborators of an Orchestrator. Dispatcher may be nil when
// caching is not configured.
type Deps struct {
	Finder     RuntimeFinder
	Fetcher    ScriptFetcher
	Runner     InstallerRunner
	Host       Host
	Dispatcher Dispatcher
	Logger     *log.Logger
}

// Result describes a successful installation.
type Result struct {
	PDMVersion    string
	PDMBin        string
	PythonVersion string
	CacheChecked  bool
}

// Orchestrator runs a single setup. It is not reusable.
type Orchestrator struct {
	cfg   Config
	deps  Deps
	state State
}

// New creates an Orchestrator in the Idle state. cfg should already have
// been through [Config.ValidateAndSetDefaults].
func New(cfg Config, deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// State returns the current stage.
func (o *Orchestrator) State() State { return o.state }

// ResultFile returns where the installer writes its result.
func (o *Orchestrator) ResultFile() string {
	return filepath.Join(o.cfg.WorkDir, installer.OutputFile)
}

// Run executes the installation. On failure the returned error carries the
// code of the stage that failed and nothing has been published.
func (o *Orchestrator) Run(ctx context.Context) (result *Result, err error) {
	if o.state != StateIdle {
		return nil, errors.New(errors.ErrCodeInternal, "setup already ran (state %s)", o.state)
	}
	defer func() {
		o.removeResultFile()
		if err != nil {
			o.state = StateFailed
		}
	}()

	var rt *pyruntime.Runtime
	err = o.stage(ctx, StateResolvingRuntime, func(ctx context.Context) error {
		var err error
		rt, err = o.deps.Finder.Find(ctx, pyruntime.Request{
			Spec:              o.cfg.PythonVersion,
			Arch:              o.cfg.Architecture,
			AllowPrereleases:  o.cfg.AllowPythonPrereleases,
			UpdateEnvironment: o.cfg.UpdatePython,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if err = o.stage(ctx, StateInvoking, func(ctx context.Context) error {
		return o.invoke(ctx, rt)
	}); err != nil {
		return nil, err
	}

	var out *installer.Output
	err = o.stage(ctx, StateParsingResult, func(context.Context) error {
		var err error
		out, err = installer.ReadOutput(o.ResultFile())
		return err
	})
	if err != nil {
		return nil, err
	}

	if err = o.stage(ctx, StateWiring, func(context.Context) error {
		w, err := PlanWiring(*out, o.cfg.EnablePEP582, o.cfg.Variant)
		if err != nil {
			return err
		}
		w.MatcherDir = o.cfg.MatcherDir
		return w.Apply(o.deps.Host)
	}); err != nil {
		return nil, err
	}

	result = &Result{
		PDMVersion:    out.ToolVersion,
		PDMBin:        out.BinaryPath(),
		PythonVersion: out.InstallPythonVersion,
	}
	o.deps.Logger.Info("installed pdm", "version", result.PDMVersion, "bin", result.PDMBin)

	if o.cfg.CacheAvailable && o.deps.Dispatcher != nil {
		if err = o.stage(ctx, StateCaching, func(ctx context.Context) error {
			return o.deps.Dispatcher.Cache(ctx, result.PDMBin, result.PythonVersion)
		}); err != nil {
			return nil, err
		}
		result.CacheChecked = true
	}

	o.state = StateDone
	return result, nil
}

func (o *Orchestrator) invoke(ctx context.Context, rt *pyruntime.Runtime) error {
	o.deps.Logger.Debug("downloading installer", "url", o.cfg.ScriptURL)
	script, err := o.deps.Fetcher.Fetch(ctx, o.cfg.ScriptURL)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "download installer from %s", o.cfg.ScriptURL)
	}

	if o.cfg.PyPIMirror != "" {
		o.deps.Logger.Info("Using PyPI mirror", "url", o.cfg.PyPIMirror)
	}
	inv := installer.BuildInvocation(installer.Options{
		Version:    o.cfg.Version,
		Prerelease: o.cfg.Prerelease,
		PyPIMirror: o.cfg.PyPIMirror,
		Dir:        o.cfg.WorkDir,
	})
	return o.deps.Runner.Run(ctx, rt.BinDir, inv, script)
}

// stage moves to s and runs fn, reporting timing through the stage hooks.
func (o *Orchestrator) stage(ctx context.Context, s State, fn func(context.Context) error) error {
	o.state = s
	hooks := observability.Stage()
	hooks.OnStageStart(ctx, s.String())
	start := time.Now()
	err := fn(ctx)
	hooks.OnStageComplete(ctx, s.String(), time.Since(start), err)
	return err
}

func (o *Orchestrator) removeResultFile() {
	err := os.Remove(o.ResultFile())
	if err != nil && !os.IsNotExist(err) {
		o.deps.Logger.Warn("failed to remove installer output", "path", o.ResultFile(), "err", err)
	}
}
