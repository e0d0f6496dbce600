package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// pdfAssembler concatenates pages into one multi-page PDF and rewrites its
// info dictionary with Title/Author/Creator. The rewrite runs as a second
// pass because image import and metadata editing are separate pdfcpu
// operations.
type pdfAssembler struct{}

func (pdfAssembler) Format() Format { return FormatPDF }

func (pdfAssembler) Assemble(ctx context.Context, job Job) error {
	scratch, err := os.MkdirTemp(filepath.Dir(job.OutputPath), ".bmd-pdf-")
	if err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	// pdfcpu embeds JPEGs as-is, so normalize color mode up front.
	pages := make([]string, len(job.Pages))
	for i, src := range job.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := normalizeJPEG(src)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		p := filepath.Join(scratch, fmt.Sprintf("%03d.jpg", i+1))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return fmt.Errorf("staging page %d: %w", i+1, err)
		}
		pages[i] = p
	}

	tmp := filepath.Join(scratch, "episode.pdf")
	if err := api.ImportImagesFile(pages, tmp, nil, nil); err != nil {
		return fmt.Errorf("importing pages: %w", err)
	}

	props := map[string]string{
		"Title":   job.Title,
		"Author":  job.Author,
		"Creator": job.Creator,
	}
	if err := api.AddPropertiesFile(tmp, "", props, nil); err != nil {
		return fmt.Errorf("writing pdf metadata: %w", err)
	}

	// The document only appears at the canonical path once complete.
	if err := os.Rename(tmp, job.OutputPath); err != nil {
		return fmt.Errorf("publishing pdf: %w", err)
	}
	return nil
}
