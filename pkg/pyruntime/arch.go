package pyruntime

import "runtime"

// HostArch returns the architecture name runners and the tool cache use for
// the current process.
func HostArch() string {
	return archName(runtime.GOARCH)
}

func archName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}
