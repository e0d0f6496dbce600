// Package comic drives whole-series downloads: it fetches comic detail,
// builds the episode list, and schedules per-episode pipelines under a
// bounded worker fan-out. Episode pipelines never share mutable state; the
// only scheduling discipline is that no episode runs twice concurrently,
// which the one-goroutine-per-episode fan-out guarantees.
package comic

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/assemble"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/bili"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/episode"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/policy"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/progress"
)

// DefaultWorkers bounds episode-level parallelism when Options.Workers is
// unset.
const DefaultWorkers = 4

// Options configures a series download.
type Options struct {
	SessData string
	RootDir  string // parent of the per-series save directory
	Format   assemble.Format
	Workers  int

	// Episode ordinal range, inclusive. Zero From means from the start;
	// zero To means to the end.
	From int
	To   int

	Logger *slog.Logger

	// BaseURL overrides the API host; used by tests.
	BaseURL string
}

// Comic is one series with its resolved detail metadata.
type Comic struct {
	client *bili.Client
	detail *bili.ComicDetail
	opts   Options
	log    *slog.Logger
	dir    string
}

// New fetches the comic's detail under the bounded-time policy and prepares
// the series save directory path.
func New(ctx context.Context, comicID int, opts Options) (*Comic, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.To <= 0 {
		opts.To = math.MaxInt
	}

	clientOpts := []bili.Option{}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, bili.WithBaseURL(opts.BaseURL))
	}
	client := bili.NewClient(comicID, opts.SessData, clientOpts...)

	var detail *bili.ComicDetail
	err := policy.Network.Do(ctx, func(ctx context.Context) error {
		var err error
		detail, err = client.Detail(ctx)
		if err != nil {
			log.Warn("comic detail fetch failed, retrying", "comic", comicID, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching detail for comic %d: %w", comicID, err)
	}

	dir := filepath.Join(opts.RootDir, fmt.Sprintf("《%s》 作者：%s",
		episode.SanitizeName(detail.Title), strings.Join(detail.AuthorName, ", ")))

	return &Comic{
		client: client,
		detail: detail,
		opts:   opts,
		log:    log,
		dir:    dir,
	}, nil
}

// Detail returns the series metadata.
func (c *Comic) Detail() *bili.ComicDetail { return c.detail }

// Dir returns the series save directory.
func (c *Comic) Dir() string { return c.dir }

// Episodes builds the episode pipelines selected by the configured ordinal
// range, locked ones included. The listing arrives newest-first; the result
// is in ordinal order.
func (c *Comic) Episodes() []*episode.Episode {
	series := episode.Series{
		Title:  c.detail.Title,
		Author: strings.Join(c.detail.AuthorName, ", "),
		Dir:    c.dir,
	}

	var eps []*episode.Episode
	for i := len(c.detail.EpList) - 1; i >= 0; i-- {
		info := c.detail.EpList[i]
		if info.Ord < c.opts.From || info.Ord > c.opts.To {
			continue
		}
		eps = append(eps, episode.New(info, series, c.opts.Format, c.client, c.log))
	}
	return eps
}

// Download runs every selected episode's pipeline under a bounded worker
// fan-out, reporting through sink. Individual episode failures are counted,
// not fatal; the returned error summarizes them.
func (c *Comic) Download(ctx context.Context, sink progress.Sink) error {
	var eps []*episode.Episode
	for _, ep := range c.Episodes() {
		// Locked episodes are a credential restriction, not an error.
		if !ep.Available {
			c.log.Info("skipping locked episode", "episode", ep.Title)
			continue
		}
		eps = append(eps, ep)
	}
	if len(eps) == 0 {
		return fmt.Errorf("no downloadable episodes in range")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating series dir: %w", err)
	}

	c.log.Info("starting download",
		"comic", c.detail.Title, "episodes", len(eps), "workers", c.opts.Workers)

	sem := make(chan struct{}, c.opts.Workers)
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, ep := range eps {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(ep *episode.Episode) {
			defer wg.Done()
			defer func() { <-sem }() // release

			taskID := uuid.New().String()
			if err := ep.Run(ctx, taskID, sink); err != nil {
				failed.Add(1)
				c.log.Error("episode skipped", "episode", ep.Title, "err", err)
			}
		}(ep)
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d episodes failed", n, len(eps))
	}
	return nil
}
