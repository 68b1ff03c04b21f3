package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date, "go: "} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "locuszoom/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
