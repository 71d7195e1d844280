package actions

import (
	"fmt"
	"strings"
)

// issueCommand prints a workflow command to the host's command stream.
func (h *Host) issueCommand(command, message string) {
	fmt.Fprintf(h.out, "::%s::%s\n", command, escapeData(message))
}

// escapeData escapes a workflow command payload.
func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

// Debug emits a debug message. The runner only shows it when step debug
// logging is enabled.
func (h *Host) Debug(message string) {
	h.issueCommand("debug", message)
}

// Warning emits a warning annotation.
func (h *Host) Warning(message string) {
	h.issueCommand("warning", message)
}

// Error emits an error annotation.
func (h *Host) Error(message string) {
	h.issueCommand("error", message)
}

// AddMask hides value from all later log output.
func (h *Host) AddMask(value string) {
	h.issueCommand("add-mask", value)
}

// AddMatcher registers the problem matcher stored at path.
func (h *Host) AddMatcher(path string) {
	h.issueCommand("add-matcher", path)
}

// SetFailed reports message as the step's failure and marks the step
// failed. The caller is expected to exit with [Host.ExitCode].
func (h *Host) SetFailed(message string) {
	h.failed = true
	h.Error(message)
}
