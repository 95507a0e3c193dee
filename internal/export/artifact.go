package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

const (
	outputDirFileMode = 0o755
	outputFileMode    = 0o644
)

// writeArtifact writes name under dir through a temporary file that is
// renamed into place only after a complete, successful write.
func writeArtifact(dir, name string, write func(io.Writer) error) (err error) {
	path := filepath.Join(dir, name)
	fail := func(e error) error { return &ArtifactError{Path: path, Err: e} }

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		_ = tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fail(err)
	}
	return nil
}
