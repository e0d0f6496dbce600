package episode

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/assemble"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/bili"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/internal/progress"
	"github.com/ZhouJie2090/BiliBili-Manga-Downloader/version"
)

// DownloadedPage is a verified temporary page artifact. One is created only
// after the page body matched the server-declared checksum, and it is
// always either consumed by assembly or deleted by cleanup.
type DownloadedPage struct {
	Index int // 1-based page index within the episode
	Path  string
	Size  int64
}

// Resolve fetches the ordered page list and exchanges it for matching
// access tokens, both under the bounded-time policy. Page ordering from the
// index call is preserved; paths and tokens correlate strictly by position.
func (e *Episode) Resolve(ctx context.Context) error {
	var paths []string
	err := e.NetPolicy.Do(ctx, func(ctx context.Context) error {
		var err error
		paths, err = e.client.ImageIndex(ctx, e.ID)
		if err != nil {
			e.log.Warn("image index fetch failed, retrying",
				"episode", e.Title, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: image index for %q: %v", ErrMetadataUnavailable, e.Title, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: empty page list for %q", ErrMetadataUnavailable, e.Title)
	}

	var tokens []bili.PageToken
	err = e.NetPolicy.Do(ctx, func(ctx context.Context) error {
		var err error
		tokens, err = e.client.ImageTokens(ctx, paths)
		if err != nil {
			e.log.Warn("image token fetch failed, retrying",
				"episode", e.Title, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: image tokens for %q: %v", ErrMetadataUnavailable, e.Title, err)
	}
	if len(tokens) != len(paths) {
		return fmt.Errorf("%w: got %d tokens for %d pages of %q",
			ErrMetadataUnavailable, len(tokens), len(paths), e.Title)
	}

	e.tokens = tokens
	return nil
}

// fetchPage downloads and persists one verified page. Network transfer and
// integrity run under the bounded-time policy; the local write runs under
// the bounded-count policy as its own failure class.
func (e *Episode) fetchPage(ctx context.Context, index int, tok bili.PageToken) (DownloadedPage, error) {
	var body []byte
	err := e.NetPolicy.Do(ctx, func(ctx context.Context) error {
		var err error
		body, err = e.client.Image(ctx, tok.URL, tok.Token)
		if err != nil {
			e.log.Warn("page fetch failed, retrying",
				"episode", e.Title, "page", index, "err", err)
		}
		return err
	})
	if err != nil {
		return DownloadedPage{}, fmt.Errorf("%w: page %d of %q: %v", ErrPageFetch, index, e.Title, err)
	}

	path := e.tempPagePath(index)
	err = e.FSPolicy.Do(ctx, func(context.Context) error {
		return os.WriteFile(path, body, 0o644)
	})
	if err != nil {
		return DownloadedPage{}, fmt.Errorf("%w: writing page %d of %q to %s: %v",
			ErrFilesystem, index, e.Title, path, err)
	}
	return DownloadedPage{Index: index, Path: path, Size: int64(len(body))}, nil
}

// Run executes the full pipeline for this episode, publishing a progress
// event after every page and a terminal event after assembly. The returned
// error carries the failed stage and cause; callers report it once and move
// on.
func (e *Episode) Run(ctx context.Context, taskID string, sink progress.Sink) error {
	if e.Downloaded() {
		e.log.Info("episode already downloaded, skipping", "episode", e.Title)
		sink.Publish(progress.Event{TaskID: taskID, Rate: 100, Path: e.CanonicalPath()})
		return nil
	}

	fail := func(err error) error {
		sink.Publish(progress.Event{TaskID: taskID, Rate: progress.FailureRate})
		return err
	}

	if err := os.MkdirAll(e.series.Dir, 0o755); err != nil {
		return fail(fmt.Errorf("%w: creating working dir: %v", ErrFilesystem, err))
	}

	if err := e.Resolve(ctx); err != nil {
		return fail(err)
	}

	var pages []DownloadedPage
	for i, tok := range e.tokens {
		page, err := e.fetchPage(ctx, i+1, tok)
		if err != nil {
			// Abort the episode; no partial documents. Whatever temp
			// pages exist still get cleaned up.
			if cleanupErr := e.cleanup(pages); cleanupErr != nil {
				e.log.Error("temp pages left behind", "episode", e.Title, "err", cleanupErr)
			}
			return fail(err)
		}
		pages = append(pages, page)
		// Page events top out below 100; the terminal event owns it.
		sink.Publish(progress.Event{
			TaskID: taskID,
			Rate:   (i + 1) * 99 / len(e.tokens),
			Path:   e.CanonicalPath(),
		})
	}

	// Another run may have produced the artifact while pages downloaded.
	if e.Downloaded() {
		if cleanupErr := e.cleanup(pages); cleanupErr != nil {
			e.log.Error("temp pages left behind", "episode", e.Title, "err", cleanupErr)
		}
		sink.Publish(progress.Event{TaskID: taskID, Rate: 100, Path: e.CanonicalPath()})
		return nil
	}

	asmErr := e.assemble(ctx, pages)
	cleanupErr := e.cleanup(pages)
	if asmErr != nil {
		return fail(asmErr)
	}
	if cleanupErr != nil {
		// Reported, never rolls back the artifact.
		e.log.Error("temp pages left behind", "episode", e.Title, "err", cleanupErr)
	}

	e.log.Info("episode downloaded", "episode", e.Title, "pages", len(pages), "path", e.CanonicalPath())
	sink.Publish(progress.Event{TaskID: taskID, Rate: 100, Path: e.CanonicalPath()})
	return nil
}

// assemble merges verified pages into the configured artifact, retrying the
// whole strategy under the bounded-count policy. Page order is restored
// from page indices, never from completion order.
func (e *Episode) assemble(ctx context.Context, pages []DownloadedPage) error {
	asm, err := assemble.For(e.Format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	ordered := make([]DownloadedPage, len(pages))
	copy(ordered, pages)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	paths := make([]string, len(ordered))
	for i, p := range ordered {
		paths[i] = p.Path
	}

	job := assemble.Job{
		Pages:      paths,
		OutputPath: e.CanonicalPath(),
		Title:      e.docTitle(),
		Author:     e.series.Author,
		Creator:    version.Creator(),
		Software:   version.Software(),
		Copyright:  version.Copyright,
	}

	err = e.FSPolicy.Do(ctx, func(ctx context.Context) error {
		if err := asm.Assemble(ctx, job); err != nil {
			e.log.Warn("assembly failed, retrying",
				"episode", e.Title, "format", e.Format, "err", err)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %q as %s: %v", ErrAssembly, e.Title, e.Format, err)
	}
	return nil
}
