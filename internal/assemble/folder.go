package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// folderAssembler writes pages as sequentially numbered JPEGs inside the
// episode's canonical folder.
type folderAssembler struct{}

func (folderAssembler) Format() Format { return FormatFolder }

func (folderAssembler) Assemble(ctx context.Context, job Job) error {
	// Stage next to the canonical path so the final rename stays on one
	// filesystem.
	staging := job.OutputPath + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing stale staging dir: %w", err)
	}

	if err := writePages(ctx, job, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	if err := os.Rename(staging, job.OutputPath); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("publishing folder: %w", err)
	}
	return nil
}

// writePages re-encodes every page into dir as NNN.jpg (3-digit, 1-based)
// with EXIF provenance tags. Shared by the folder and zip strategies.
func writePages(ctx context.Context, job Job, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating page dir: %w", err)
	}
	for i, src := range job.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := normalizeJPEG(src)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		tagged, err := tagJPEG(data, job)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("%03d.jpg", i+1)
		if err := os.WriteFile(filepath.Join(dir, name), tagged, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
