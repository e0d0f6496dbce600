package episode

import "errors"

// Episode-scoped failure classes. All are non-fatal to a batch run: the
// pipeline reports the episode as skipped and the next episode proceeds.
var (
	// ErrMetadataUnavailable marks an exhausted page-list or token fetch.
	ErrMetadataUnavailable = errors.New("episode metadata unavailable")

	// ErrPageFetch marks a page download that exhausted retries, including
	// checksum mismatches.
	ErrPageFetch = errors.New("page fetch failed")

	// ErrFilesystem marks an exhausted local write or delete.
	ErrFilesystem = errors.New("filesystem operation failed")

	// ErrAssembly marks an exhausted output-format merge.
	ErrAssembly = errors.New("episode assembly failed")

	// ErrCleanup marks temp page files left behind. Non-fatal: it never
	// rolls back an already-produced artifact.
	ErrCleanup = errors.New("temp page cleanup failed")
)
