package installer

// OutputFile is the path, relative to the installer's working directory,
// where the installer writes its JSON result.
const OutputFile = "install-output.json"

// Options are the declarative inputs of one installer run.
type Options struct {
	Version    string // exact PDM version; empty installs the latest release
	Prerelease bool   // allow prerelease PDM versions
	PyPIMirror string // index URL for PDM and its dependencies; empty uses PyPI
	Dir        string // working directory; empty uses the current directory
}

// EnvVar is an environment variable to export before the installer runs.
type EnvVar struct {
	Name  string
	Value string
}

// Invocation is a fully built installer call.
type Invocation struct {
	Args []string
	Env  []EnvVar
	Dir  string // the installer runs here and writes [OutputFile] here
}

// BuildInvocation builds the installer call for opts.
//
// The script is always read from stdin ("-") and always writes its result to
// [OutputFile]. A mirror is exported both as PDM_PYPI_URL, which PDM reads,
// and as PIP_INDEX_URL, which pip reads while installing PDM's own
// dependencies; with only one of the two half of the install bypasses the
// mirror.
func BuildInvocation(opts Options) Invocation {
	args := []string{"-"}
	if opts.Prerelease {
		args = append(args, "--prerelease")
	}
	if opts.Version != "" {
		args = append(args, "--version", opts.Version)
	}
	args = append(args, "-o", OutputFile)

	var env []EnvVar
	if opts.PyPIMirror != "" {
		env = append(env,
			EnvVar{Name: "PDM_PYPI_URL", Value: opts.PyPIMirror},
			EnvVar{Name: "PIP_INDEX_URL", Value: opts.PyPIMirror},
		)
	}
	return Invocation{Args: args, Env: env, Dir: opts.Dir}
}
