// Package episode implements the per-episode download pipeline: resolve
// page metadata, fetch and verify every page, assemble the configured
// output artifact, and clean up temporary files. All failures are
// episode-scoped; a batch run survives any single episode failing.
package episode

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/assemble"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/bili"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/policy"
)

// Series carries the parent-comic fields an episode needs for naming and
// artifact metadata.
type Series struct {
	Title  string
	Author string
	Dir    string // series save directory; also the episode working dir
}

// Episode is one downloadable unit of a comic. Constructed once from
// listing data; immutable afterwards except for the token list populated by
// Resolve.
type Episode struct {
	ID        int
	Ordinal   int
	Title     string
	Size      int64
	Available bool

	Format assemble.Format

	// Retry policies for this episode's operations; defaults are the two
	// named policies. Exposed so tests can tighten them.
	NetPolicy policy.Policy
	FSPolicy  policy.Policy

	series Series
	client *bili.Client
	log    *slog.Logger
	tokens []bili.PageToken
}

// New builds an Episode from a listing entry. The display title is
// normalized here, once.
func New(info bili.EpisodeInfo, series Series, format assemble.Format, client *bili.Client, log *slog.Logger) *Episode {
	if log == nil {
		log = slog.Default()
	}
	return &Episode{
		ID:        info.ID,
		Ordinal:   info.Ord,
		Title:     NormalizeTitle(info.ShortTitle, info.Title),
		Size:      info.Size,
		Available: !info.IsLocked,
		Format:    format,
		NetPolicy: policy.Network,
		FSPolicy:  policy.Filesystem,
		series:    series,
		client:    client,
		log:       log,
	}
}

// CanonicalPath is the output location for the configured format. Only this
// one path is consulted for the skip check; the format can change between
// runs.
func (e *Episode) CanonicalPath() string {
	return assemble.CanonicalPath(e.series.Dir, e.Title, e.Format)
}

// Downloaded reports whether the canonical output for the configured format
// already exists.
func (e *Episode) Downloaded() bool {
	_, err := os.Stat(e.CanonicalPath())
	return err == nil
}

// tempPagePath names a page's temporary file inside the working directory.
func (e *Episode) tempPagePath(index int) string {
	return filepath.Join(e.series.Dir, fmt.Sprintf("%d_%d.jpg", e.Ordinal, index))
}

// docTitle is the provenance title recorded in artifact metadata.
func (e *Episode) docTitle() string {
	return fmt.Sprintf("《%s》 - %s", e.series.Title, e.Title)
}
