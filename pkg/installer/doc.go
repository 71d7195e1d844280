// Package installer drives the PDM bootstrap installer (install-pdm.py).
//
// The installer is an external Python script. This package owns the three
// pieces of its contract:
//
//   - [BuildInvocation] turns [Options] into the argument list and the
//     environment exports the installer needs.
//   - [Runner] executes the script with a Python interpreter, piping the
//     script body on stdin.
//   - [ReadOutput] parses and validates the JSON result file the installer
//     writes (-o install-output.json).
package installer
