package testutils

import (
	"sort"
	"strings"
	"testing"

	"github.com/syou6162/cmrunner/internal/cmdargs"
)

// AssertOutputContains reports every expected string missing from output in a single failure.
func AssertOutputContains(t *testing.T, output string, want ...string) {
	t.Helper()
	var missing []string
	for _, s := range want {
		if !strings.Contains(output, s) {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		t.Errorf("output missing %q\n\nActual output:\n%s", missing, output)
	}
}

// AssertMasked checks that output shows the mask marker and none of the secrets.
func AssertMasked(t *testing.T, output string, secrets ...string) {
	t.Helper()
	if !strings.Contains(output, cmdargs.Mask) {
		t.Errorf("output has no %q marker\n\nActual output:\n%s", cmdargs.Mask, output)
	}
	for _, s := range secrets {
		if n := strings.Count(output, s); n > 0 {
			t.Errorf("secret %q leaked %d time(s)\n\nActual output:\n%s", s, n, output)
		}
	}
}

// AssertCalls compares the fake cm call log against the expected count per subcommand.
func AssertCalls(t *testing.T, cm *FakeCm, want map[string]int) {
	t.Helper()
	subcommands := make([]string, 0, len(want))
	for sub := range want {
		subcommands = append(subcommands, sub)
	}
	sort.Strings(subcommands)
	for _, sub := range subcommands {
		if got := cm.CountCalls(sub); got != want[sub] {
			t.Errorf("cm %s called %d times, want %d (calls: %v)", sub, got, want[sub], cm.Calls())
		}
	}
}
