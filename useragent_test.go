package grit

import (
	"slices"
	"strings"
	"testing"
)

func TestDefaultUserAgents(t *testing.T) {
	agents := DefaultUserAgents()
	if len(agents) == 0 {
		t.Fatal("DefaultUserAgents() is empty")
	}
	for i, agent := range agents {
		if !strings.HasPrefix(agent, "Mozilla/5.0") {
			t.Errorf("agents[%d] = %q, want a browser-like string", i, agent)
		}
	}
}

// TestDefaultUserAgents_ReturnsCopy verifies callers cannot mutate the
// built-in list through the returned slice.
func TestDefaultUserAgents_ReturnsCopy(t *testing.T) {
	first := DefaultUserAgents()
	first[0] = "mutated"

	second := DefaultUserAgents()
	if second[0] == "mutated" {
		t.Error("DefaultUserAgents() exposes the internal slice")
	}
}

func TestPickUserAgent_FromCandidates(t *testing.T) {
	candidates := []string{"custom-agent/1.0"}
	if got := PickUserAgent(candidates); got != "custom-agent/1.0" {
		t.Errorf("PickUserAgent() = %q, want the only candidate", got)
	}
}

func TestPickUserAgent_FromDefaults(t *testing.T) {
	defaults := DefaultUserAgents()

	// with no candidates the pick comes from the built-in list
	for i := 0; i < 20; i++ {
		got := PickUserAgent(nil)
		if !slices.Contains(defaults, got) {
			t.Fatalf("PickUserAgent(nil) = %q, not in the built-in list", got)
		}
	}
}

func TestPickUserAgent_CoversCandidates(t *testing.T) {
	candidates := []string{"a/1", "b/2", "c/3"}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[PickUserAgent(candidates)] = true
	}

	// 200 draws over 3 candidates misses one with probability ~1e-35
	if len(seen) != len(candidates) {
		t.Errorf("saw %d distinct agents over 200 picks, want %d", len(seen), len(candidates))
	}
}
