// Package assemble merges an episode's verified page files into one durable
// output artifact. Three interchangeable strategies exist, one per save
// format; each is atomic from the caller's perspective: on failure nothing
// remains at the canonical output path.
package assemble

import (
	"context"
	"fmt"
	"path/filepath"
)

// Format selects the output artifact type.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatFolder Format = "folder"
	FormatZip    Format = "zip"
)

// ParseFormat converts a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatFolder, FormatZip:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown save format %q (want pdf, folder, or zip)", s)
}

// CanonicalPath returns the single output location implied by a format. Its
// existence marks the episode complete.
func CanonicalPath(dir, title string, f Format) string {
	switch f {
	case FormatPDF:
		return filepath.Join(dir, title+".pdf")
	case FormatZip:
		return filepath.Join(dir, title+".zip")
	default:
		return filepath.Join(dir, title)
	}
}

// Job describes one assembly run over an ordered sequence of verified page
// files.
type Job struct {
	Pages      []string // temp page paths, already in page-index order
	OutputPath string   // canonical path for the configured format

	// Provenance metadata embedded into the artifact.
	Title     string // e.g. 《comic》 - episode
	Author    string
	Creator   string // tool name/version/copyright, PDF only
	Software  string // tool name/version, image EXIF only
	Copyright string
}

// Assembler merges verified pages into one artifact. Re-running a failed
// assembly from the same pages is safe.
type Assembler interface {
	Format() Format
	Assemble(ctx context.Context, job Job) error
}

// For returns the assembler for a format.
func For(f Format) (Assembler, error) {
	switch f {
	case FormatPDF:
		return pdfAssembler{}, nil
	case FormatFolder:
		return folderAssembler{}, nil
	case FormatZip:
		return zipAssembler{}, nil
	}
	return nil, fmt.Errorf("no assembler for format %q", f)
}
