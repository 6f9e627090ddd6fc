package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

const fakeCmScript = `#!/bin/sh
dir=$(dirname "$0")
echo "$@" >> "$dir/calls.log"
case "$1" in
version)
  if [ -f "$dir/broken" ]; then
    echo "cm: license expired" 1>&2
    exit 1
  fi
  echo "11.0.16.8101 (fake)"
  ;;
cat)
  n=$(cat "$dir/failures" 2>/dev/null || echo 0)
  if [ "$n" -gt 0 ]; then
    echo $((n - 1)) > "$dir/failures"
    echo "transient failure" 1>&2
    exit 1
  fi
  cat "$dir/content"
  ;;
*)
  echo "unknown command $1" 1>&2
  exit 2
  ;;
esac
`

// FakeCm is a shell script standing in for the cm client. It answers
// `version` and `cat`, records every invocation and can be told to fail.
type FakeCm struct {
	Path string
	Dir  string
	t    *testing.T
}

// NewFakeCm installs a fake cm into a temporary directory
func NewFakeCm(t *testing.T) *FakeCm {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake cm is a POSIX shell script")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "cm")
	if err := os.WriteFile(path, []byte(fakeCmScript), 0755); err != nil {
		t.Fatal(err)
	}
	f := &FakeCm{Path: path, Dir: dir, t: t}
	f.SetContent(nil)
	return f
}

// SetContent sets what `cm cat` writes to stdout
func (f *FakeCm) SetContent(content []byte) {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.Dir, "content"), content, 0644); err != nil {
		f.t.Fatal(err)
	}
}

// FailNext makes the next n `cm cat` calls exit with code 1
func (f *FakeCm) FailNext(n int) {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.Dir, "failures"), []byte(strconv.Itoa(n)), 0644); err != nil {
		f.t.Fatal(err)
	}
}

// Break makes `cm version` fail
func (f *FakeCm) Break() {
	f.t.Helper()
	if err := os.WriteFile(filepath.Join(f.Dir, "broken"), nil, 0644); err != nil {
		f.t.Fatal(err)
	}
}

// Calls returns the argument lines of every invocation so far
func (f *FakeCm) Calls() []string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.Dir, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		f.t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// CountCalls returns how many invocations started with subcommand
func (f *FakeCm) CountCalls(subcommand string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == subcommand || strings.HasPrefix(c, subcommand+" ") {
			n++
		}
	}
	return n
}
