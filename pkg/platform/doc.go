// Package platform describes the closed set of host layouts setup-pdm
// supports.
//
// Everything that differs between operating systems is decided here, once,
// when a [Variant] is selected: the Python entry-point name, the layout of
// the PEP 582 import path inside a PDM install, and the process-wide
// environment patches the host needs before Python is spawned. Callers hold
// a Variant and never compare runtime.GOOS themselves.
package platform
