// Package content fetches single file revisions from a Plastic SCM server.
package content

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/syou6162/cmrunner/internal/cmerrors"
	"github.com/syou6162/cmrunner/internal/runner"
)

const copyBufferSize = 32 * 1024

// Retriever writes `cm cat` output into temp files
type Retriever struct {
	Runner *runner.Runner
	Temp   TempFileFactory
}

// NewRetriever creates a Retriever using the system temp directory
func NewRetriever(r *runner.Runner) *Retriever {
	return &Retriever{Runner: r, Temp: TempDir{}}
}

// GetFromServer is a shortcut for NewRetriever(r).GetFileContent
func GetFromServer(ctx context.Context, r *runner.Runner, serverFile, revSpec string) (*DeleteOnCloseFile, error) {
	return NewRetriever(r).GetFileContent(ctx, serverFile, revSpec)
}

// GetFileContent fetches serverFile at revSpec into a new temp file. The
// returned handle is positioned at the start of the content and deletes the
// file on Close.
func (rt *Retriever) GetFileContent(ctx context.Context, serverFile, revSpec string) (*DeleteOnCloseFile, error) {
	f, err := rt.Temp.Create()
	if err != nil {
		return nil, rt.Runner.Fatal(cmerrors.NewLocalIOError("create temp file", err))
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	cmd := GetFileCommand{Spec: ServerPathSpec(serverFile, revSpec)}
	out, err := runner.RunCommand(ctx, rt.Runner, cmd)
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := copyContent(f, out); err != nil {
		cleanup()
		return nil, rt.Runner.Fatal(cmerrors.NewLocalIOError("write temp file", err).WithContext("path", f.Name()))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, rt.Runner.Fatal(cmerrors.NewLocalIOError("rewind temp file", err).WithContext("path", f.Name()))
	}
	return newDeleteOnCloseFile(f), nil
}

// copyContent copies src into dst through a bounded buffer
func copyContent(dst io.Writer, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
