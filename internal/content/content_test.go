package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syou6162/cmrunner/internal/cmerrors"
	"github.com/syou6162/cmrunner/internal/console"
	"github.com/syou6162/cmrunner/internal/executor"
	"github.com/syou6162/cmrunner/internal/logger"
	"github.com/syou6162/cmrunner/internal/runner"
	"github.com/syou6162/cmrunner/internal/tool"
)

func newRunner(t *testing.T, mock *executor.MockCommandExecutor) *runner.Runner {
	t.Helper()
	l := logger.New(logger.ErrorLevel)
	l.SetOutput(io.Discard)
	mock.On("cm [version]", executor.MockResponse{Stdout: []byte("11.0")})
	return runner.New(runner.Options{
		Tool:     tool.FromPath("cm", false),
		Executor: mock,
		Logger:   l,
		Sleep:    func(context.Context, time.Duration) error { return nil },
	})
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestServerPathSpec(t *testing.T) {
	assert.Equal(t, "serverpath:/src/a.txt#cs:42", ServerPathSpec("/src/a.txt", "cs:42"))
	assert.Equal(t, "serverpath:/#br:/main", ServerPathSpec("/", "br:/main"))
}

func TestGetFileCommand_Arguments(t *testing.T) {
	args := GetFileCommand{Spec: "serverpath:/src/a.txt#cs:42"}.Arguments()
	assert.Equal(t, []string{"cat", "serverpath:/src/a.txt#cs:42"}, args.Args())
	for _, a := range args.Args() {
		assert.NotContains(t, a, "--file")
	}
}

func TestGetFileContent_WritesStdoutToTempFile(t *testing.T) {
	dir := t.TempDir()
	mock := executor.NewMockCommandExecutor()
	mock.On("cm [cat serverpath:/src/a.txt#cs:42]", executor.MockResponse{Stdout: []byte("hello\nworld\n")})
	rt := &Retriever{Runner: newRunner(t, mock), Temp: TempDir{Dir: dir}}

	f, err := rt.GetFileContent(context.Background(), "/src/a.txt", "cs:42")
	require.NoError(t, err)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(got))
	assert.Len(t, dirEntries(t, dir), 1)

	require.NoError(t, f.Close())
	assert.Empty(t, dirEntries(t, dir), "file must be deleted on close")
	_, err = os.Stat(f.Name())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, f.Close(), "second close is a no-op")
}

func TestGetFileContent_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	sizes := []int{0, 1, 511, copyBufferSize - 1, copyBufferSize, copyBufferSize + 1, 3*copyBufferSize + 17}

	for _, size := range sizes {
		payload := make([]byte, size)
		rng.Read(payload)
		if size > 2 {
			payload[0], payload[size/2], payload[size-1] = 0x00, '\r', 0x1b
		}

		dir := t.TempDir()
		mock := executor.NewMockCommandExecutor()
		mock.On("cm [cat serverpath:/bin/blob.dat#cs:1]", executor.MockResponse{Stdout: payload})
		rt := &Retriever{Runner: newRunner(t, mock), Temp: TempDir{Dir: dir}}

		f, err := rt.GetFileContent(context.Background(), "/bin/blob.dat", "cs:1")
		require.NoError(t, err)
		onDisk, err := os.ReadFile(f.Name())
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, onDisk), "size %d: content differs", size)
		require.NoError(t, f.Close())
	}
}

func TestGetFileContent_CommandFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	mock := executor.NewMockCommandExecutor()
	mock.On("cm [cat serverpath:/missing#cs:1]", executor.MockResponse{ExitCode: 1})
	rt := &Retriever{Runner: newRunner(t, mock), Temp: TempDir{Dir: dir}}

	_, err := rt.GetFileContent(context.Background(), "/missing", "cs:1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cmerrors.ErrExhaustedRetries))
	assert.False(t, errors.Is(err, cmerrors.ErrLocalIO))
	assert.Empty(t, dirEntries(t, dir), "temp file removed after failure")
}

type failingFactory struct{}

func (failingFactory) Create() (*os.File, error) { return nil, os.ErrPermission }

func TestGetFileContent_TempFileFailure(t *testing.T) {
	mock := executor.NewMockCommandExecutor()
	rt := &Retriever{Runner: newRunner(t, mock), Temp: failingFactory{}}

	_, err := rt.GetFileContent(context.Background(), "/src/a.txt", "cs:42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cmerrors.ErrLocalIO))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Empty(t, mock.ExecutedCommands, "no command runs without a temp file")
}

func TestGetFileContent_TempFileFailureReported(t *testing.T) {
	var out, log bytes.Buffer
	l := logger.New(logger.ErrorLevel)
	l.SetOutput(&log)
	mock := executor.NewMockCommandExecutor()
	r := runner.New(runner.Options{
		Tool:     tool.FromPath("cm", false),
		Executor: mock,
		Listener: console.NewWriterListener(&out),
		Logger:   l,
	})
	rt := &Retriever{Runner: r, Temp: failingFactory{}}

	_, err := rt.GetFileContent(context.Background(), "/src/a.txt", "cs:42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, cmerrors.ErrLocalIO))
	assert.Contains(t, out.String(), "FATAL: I/O error during create temp file")
	assert.Contains(t, log.String(), "I/O error during create temp file: permission denied")
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCopyContent(t *testing.T) {
	var dst bytes.Buffer
	src := bytes.Repeat([]byte{0, 1, 2, 3}, copyBufferSize)
	require.NoError(t, copyContent(&dst, bytes.NewReader(src)))
	assert.Equal(t, src, dst.Bytes())

	assert.EqualError(t, copyContent(&dst, errReader{}), "disk full")
}

func TestTempDir_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		f, err := TempDir{Dir: dir}.Create()
		require.NoError(t, err)
		assert.False(t, seen[f.Name()])
		seen[f.Name()] = true
		require.NoError(t, f.Close())
	}
}
