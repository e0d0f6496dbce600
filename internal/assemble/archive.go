package assemble

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// zipAssembler runs the folder strategy into a staging dir, compresses the
// result into a single archive with all entries at the archive root, and
// removes the staging dir.
type zipAssembler struct{}

func (zipAssembler) Format() Format { return FormatZip }

func (zipAssembler) Assemble(ctx context.Context, job Job) error {
	staging, err := os.MkdirTemp(filepath.Dir(job.OutputPath), ".bmd-zip-")
	if err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := writePages(ctx, job, staging); err != nil {
		return err
	}

	tmp := job.OutputPath + ".partial"
	if err := writeZip(tmp, staging); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, job.OutputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publishing archive: %w", err)
	}
	return nil
}

// writeZip compresses every file in dir into a zip at path, flattened: entry
// names carry no directory component.
func writeZip(path, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading staging dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(f)
	if err := addEntries(zw, dir, entries); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return f.Close()
}

func addEntries(zw *zip.Writer, dir string, entries []os.DirEntry) error {
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w, err := zw.Create(e.Name())
		if err != nil {
			return fmt.Errorf("adding %s: %w", e.Name(), err)
		}
		src, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("opening %s: %w", e.Name(), err)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("compressing %s: %w", e.Name(), err)
		}
	}
	return nil
}
