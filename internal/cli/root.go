package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/setup-pdm/pkg/actions"
	"github.com/matzehuels/setup-pdm/pkg/depcache"
	"github.com/matzehuels/setup-pdm/pkg/fetch"
	"github.com/matzehuels/setup-pdm/pkg/installer"
	"github.com/matzehuels/setup-pdm/pkg/platform"
	"github.com/matzehuels/setup-pdm/pkg/pyruntime"
	"github.com/matzehuels/setup-pdm/pkg/setup"
)

// Input names, shared by the INPUT_<NAME> variables and the flags.
const (
	inputArchitecture           = "architecture"
	inputVersion                = "version"
	inputPythonVersion          = "python-version"
	inputPythonVersionFile      = "python-version-file"
	inputUpdatePython           = "update-python"
	inputAllowPythonPrereleases = "allow-python-prereleases"
	inputPyPIMirror             = "pypi-mirror"
	inputPrerelease             = "prerelease"
	inputEnablePEP582           = "enable-pep582"
	inputCache                  = "cache"
	inputCacheDependencyPath    = "cache-dependency-path"
	inputInstallerURL           = "installer-url"
)

// inputDefaults mirror the action's declared defaults.
var inputDefaults = map[string]any{
	inputArchitecture:           "",
	inputVersion:                "",
	inputPythonVersion:          "",
	inputPythonVersionFile:      "",
	inputUpdatePython:           "true",
	inputAllowPythonPrereleases: "false",
	inputPyPIMirror:             "",
	inputPrerelease:             "false",
	inputEnablePEP582:           "false",
	inputCache:                  "false",
	inputCacheDependencyPath:    depcache.DefaultDependencyPath,
	inputInstallerURL:           setup.DefaultScriptURL,
}

// setupCommand creates the command that installs PDM.
func (c *CLI) setupCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "setup-pdm",
		Short: "Install PDM into a CI job",
		Long: `setup-pdm installs PDM with the official bootstrap installer, puts it on
the search path, and publishes the pdm-version and pdm-bin outputs.

Inputs are read from INPUT_<NAME> environment variables the way GitHub
Actions passes them; a flag of the same name overrides the variable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose || c.Host.IsDebug() {
				c.SetLogLevel(LogDebug)
			}
			registerLogHooks(c.Logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := actions.NewInputs(inputDefaults)
			if err := in.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			return c.runSetup(cmd, in)
		},
	}

	fs := cmd.Flags()
	fs.String(inputArchitecture, "", "architecture of the Python interpreter (x64, x86, arm64, ...)")
	fs.String(inputVersion, "", "PDM version to install; empty installs the latest")
	fs.String(inputPythonVersion, "", "Python version spec to install PDM with (default \"3.x\")")
	fs.String(inputPythonVersionFile, "", "file to read the Python version from (.python-version or pyproject.toml)")
	fs.Bool(inputUpdatePython, true, "put the selected Python on PATH and export pythonLocation")
	fs.Bool(inputAllowPythonPrereleases, false, "allow prerelease Python versions")
	fs.String(inputPyPIMirror, "", "PyPI index URL used to install PDM")
	fs.Bool(inputPrerelease, false, "allow prerelease PDM versions")
	fs.Bool(inputEnablePEP582, false, "export PYTHONPATH for PEP 582 support")
	fs.Bool(inputCache, false, "cache PDM's installed packages")
	fs.String(inputCacheDependencyPath, depcache.DefaultDependencyPath, "lock files hashed into the cache key (newline or comma separated globs)")
	fs.String(inputInstallerURL, setup.DefaultScriptURL, "URL of the bootstrap installer script")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	return cmd
}

func (c *CLI) runSetup(cmd *cobra.Command, in *actions.Inputs) error {
	ctx := cmd.Context()

	cfg, cacheEnabled, err := c.buildConfig(in)
	if err != nil {
		return err
	}
	if cfg.PyPIMirror != "" {
		c.Host.AddMask(cfg.PyPIMirror)
	}

	deps := setup.Deps{
		Finder:  pyruntime.NewFinder(cfg.Variant, c.Host, c.Logger),
		Fetcher: fetch.NewClient(nil),
		Runner:  installer.NewRunner(cfg.Variant, c.Host, c.Logger),
		Host:    c.Host,
		Logger:  c.Logger,
	}
	if cacheEnabled {
		if !c.Host.IsCacheAvailable() {
			c.Logger.Warn("The runner was not able to contact the cache service. Caching will be skipped")
		} else {
			cfg.CacheAvailable = true
			store, _, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			deps.Dispatcher = depcache.NewDispatcher(depcache.Options{
				DependencyPaths: in.List(inputCacheDependencyPath),
				WorkDir:         cfg.WorkDir,
				RunnerOS:        cfg.Variant.RunnerOS(),
				Arch:            cfg.Architecture,
			}, store, c.Host, c.Logger)
		}
	}

	prog := newProgress(c.Logger)
	res, err := setup.New(cfg, deps).Run(ctx)
	if err != nil {
		return err
	}
	prog.done("setup complete")

	printSuccess(c.Out, "Installed pdm %s", StyleHighlight.Render(res.PDMVersion))
	printDetail(c.Out, "Binary: %s", res.PDMBin)
	printDetail(c.Out, "Python: %s", res.PythonVersion)
	return nil
}

// buildConfig reads every input once and produces the setup configuration.
// The second return reports whether the cache input is enabled.
func (c *CLI) buildConfig(in *actions.Inputs) (setup.Config, bool, error) {
	var (
		cfg          setup.Config
		cacheEnabled bool
	)
	for name, dst := range map[string]*bool{
		inputUpdatePython:           &cfg.UpdatePython,
		inputAllowPythonPrereleases: &cfg.AllowPythonPrereleases,
		inputPrerelease:             &cfg.Prerelease,
		inputEnablePEP582:           &cfg.EnablePEP582,
		inputCache:                  &cacheEnabled,
	} {
		v, err := in.Bool(name)
		if err != nil {
			return setup.Config{}, false, err
		}
		*dst = v
	}

	pythonVersion, err := pyruntime.ResolveVersionInput(in.String(inputPythonVersion), in.String(inputPythonVersionFile), c.Logger)
	if err != nil {
		return setup.Config{}, false, err
	}

	cfg.Architecture = in.String(inputArchitecture)
	cfg.Version = in.String(inputVersion)
	cfg.PythonVersion = pythonVersion
	cfg.PyPIMirror = in.String(inputPyPIMirror)
	cfg.ScriptURL = in.String(inputInstallerURL)
	cfg.MatcherDir = c.Host.TempDir()
	cfg.Variant = platform.Current()

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return setup.Config{}, false, err
	}
	return cfg, cacheEnabled, nil
}
