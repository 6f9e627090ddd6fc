package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// TempFileFactory creates uniquely named files owned by the caller
type TempFileFactory interface {
	Create() (*os.File, error)
}

// TempDir creates temp files named cm-<uuid>.tmp in Dir, or the system temp
// directory when Dir is empty.
type TempDir struct {
	Dir string
}

// Create implements TempFileFactory
func (d TempDir) Create() (*os.File, error) {
	dir := d.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, fmt.Sprintf("cm-%s.tmp", uuid.NewString()))
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
}

// DeleteOnCloseFile is a read-only handle on a temp file that removes the
// file when closed.
type DeleteOnCloseFile struct {
	f    *os.File
	once sync.Once
	err  error
}

func newDeleteOnCloseFile(f *os.File) *DeleteOnCloseFile {
	return &DeleteOnCloseFile{f: f}
}

// Name returns the path of the underlying file
func (d *DeleteOnCloseFile) Name() string {
	return d.f.Name()
}

// Read implements io.Reader
func (d *DeleteOnCloseFile) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

// Close closes and deletes the file. Calling it again is a no-op.
func (d *DeleteOnCloseFile) Close() error {
	d.once.Do(func() {
		closeErr := d.f.Close()
		removeErr := os.Remove(d.f.Name())
		if closeErr != nil {
			d.err = closeErr
			return
		}
		if removeErr != nil && !os.IsNotExist(removeErr) {
			d.err = removeErr
		}
	})
	return d.err
}
