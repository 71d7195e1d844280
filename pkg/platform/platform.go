package platform

import (
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// libgccPreload works around a libgcc_s dynamic-linking defect on some
// Ubuntu runner images (actions/virtual-environments#2803).
const libgccPreload = "/lib/x86_64-linux-gnu/libgcc_s.so.1"

// Kind identifies a platform variant.
type Kind int

const (
	KindLinux Kind = iota
	KindDarwin
	KindWindows
)

// String returns the GOOS-style name of the variant.
func (k Kind) String() string {
	switch k {
	case KindWindows:
		return Windows
	case KindDarwin:
		return Darwin
	default:
		return Linux
	}
}

// Variant is one supported host layout.
type Variant struct {
	Kind Kind
}

// Linux, Darwin and WindowsVariant are the supported variants.
var (
	LinuxVariant   = Variant{Kind: KindLinux}
	DarwinVariant  = Variant{Kind: KindDarwin}
	WindowsVariant = Variant{Kind: KindWindows}
)

// Current returns the variant for the running process.
func Current() Variant {
	return ForOS(runtime.GOOS)
}

// ForOS returns the variant for a GOOS value. Unknown POSIX systems share
// the Darwin layout: POSIX paths without the Linux preload patch.
func ForOS(goos string) Variant {
	switch goos {
	case Windows:
		return WindowsVariant
	case Linux:
		return LinuxVariant
	default:
		return DarwinVariant
	}
}

// IsWindows reports whether the variant uses the Windows layout.
func (v Variant) IsWindows() bool { return v.Kind == KindWindows }

// PythonExecutable is the entry-point name the bootstrap installer is run
// with.
func (v Variant) PythonExecutable() string {
	if v.IsWindows() {
		return "python"
	}
	return "python3"
}

// ExecutableSuffix is appended to binaries on this platform.
func (v Variant) ExecutableSuffix() string {
	if v.IsWindows() {
		return ".exe"
	}
	return ""
}

// RunnerOS is the RUNNER_OS value hosted runners report for this variant.
func (v Variant) RunnerOS() string {
	switch v.Kind {
	case KindWindows:
		return "Windows"
	case KindDarwin:
		return "macOS"
	default:
		return "Linux"
	}
}

// PreInstallEnv returns the variables that must be exported process-wide
// before the installer is spawned. Later steps in the same job need them
// too, so they are not subprocess-local.
func (v Variant) PreInstallEnv() map[string]string {
	if v.Kind == KindLinux {
		return map[string]string{"LD_PRELOAD": libgccPreload}
	}
	return nil
}

// PEP582Path returns the import path that enables PEP 582 for a PDM install
// under installDir. On POSIX layouts the site-packages directory is keyed by
// the MAJOR.MINOR of pythonVersion, which must be a full version string;
// the Windows layout ignores the version.
func (v Variant) PEP582Path(installDir, pythonVersion string) (string, error) {
	if v.IsWindows() {
		return filepath.Join(installDir, "Lib", "site-packages", "pdm", "pep582"), nil
	}
	mm, err := MajorMinor(pythonVersion)
	if err != nil {
		return "", err
	}
	return filepath.Join(installDir, "lib", "python"+mm, "site-packages", "pdm", "pep582"), nil
}

// PythonBinDirs returns the directories of a Python installation rooted at
// prefix that hold the interpreter and console scripts.
func (v Variant) PythonBinDirs(prefix string) []string {
	if v.IsWindows() {
		return []string{prefix, filepath.Join(prefix, "Scripts")}
	}
	return []string{filepath.Join(prefix, "bin")}
}

// MajorMinor parses a full Python version ("3.11.2", "3.13.0-rc.1") and
// returns "MAJOR.MINOR". Anything that is not MAJOR.MINOR.PATCH with an
// optional semver prerelease suffix is rejected.
func MajorMinor(version string) (string, error) {
	v := "v" + version
	core := version
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if !semver.IsValid(v) || strings.Count(core, ".") != 2 {
		return "", errors.New(errors.ErrCodeWiringFailed, "malformed Python version %q", version)
	}
	return strings.TrimPrefix(semver.MajorMinor(v), "v"), nil
}
