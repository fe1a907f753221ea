package thumbnail

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"picproc/bitmap"
	"picproc/codec"
)

// save writes img next to its siblings in destDir under srcName with the
// extension of f. The file is written to a temporary name and renamed into
// place, so a failed encode never leaves a partial thumbnail behind.
const outputPerm fs.FileMode = 0o644

func save(img *bitmap.Image, f codec.Format, destDir, srcName string, overwrite bool) error {
	destName := strings.TrimSuffix(srcName, filepath.Ext(srcName)) + f.Extension()
	dest := filepath.Join(destDir, destName)
	if !overwrite {
		if err := checkDest(dest); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(destDir, destName+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary destination %q: %w", tmpName, err)
	}

	if err := img.Write(tmpName, f); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("could not write %s destination %q: %w", f, destName, err)
	}
	return place(tmpName, dest, overwrite)
}

// place moves the finished temporary file to dest with the permissions
// os.Create would give it. Without overwrite dest is linked rather than
// renamed, so a file created there in the meantime is never replaced.
func place(tmpName, dest string, overwrite bool) error {
	if err := os.Chmod(tmpName, outputPerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("could not set permissions on %q: %w", tmpName, err)
	}

	if overwrite {
		if err := os.Rename(tmpName, dest); err != nil {
			_ = os.Remove(tmpName)
			return fmt.Errorf("could not rename destination file %q: %w", dest, err)
		}
		return nil
	}

	err := os.Link(tmpName, dest)
	_ = os.Remove(tmpName)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("destination file already exists: %q", filepath.Base(dest))
	}
	if err != nil {
		return fmt.Errorf("could not link destination file %q: %w", dest, err)
	}
	return nil
}

func checkDest(dest string) error {
	info, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}
	return fmt.Errorf("destination file already exists: %q", info.Name())
}
