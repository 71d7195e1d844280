// Package pyruntime locates the Python interpreter PDM is installed with.
//
// A request names a version spec ("3.x", "3.11", ">=3.9,<3.13", "~=3.10")
// and an architecture. [Finder] searches the runner's tool cache first
// (RUNNER_TOOL_CACHE/Python/<version>/<arch>) and falls back to the
// interpreter on PATH. Installing interpreters that are not present is out
// of scope: a request nothing satisfies fails with
// [errors.ErrCodeRuntimeNotFound].
//
// [ResolveVersionInput] turns the python-version and python-version-file
// inputs into a single spec string.
package pyruntime
