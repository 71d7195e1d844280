package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v4.1.0"
	if got := UserAgent(); got != "setup-pdm/v4.1.0" {
		t.Errorf("UserAgent() = %q", got)
	}
	if !strings.Contains(String(), "version: v4.1.0") {
		t.Errorf("String() = %q", String())
	}
}
