package episode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// cleanup deletes temporary page files in reverse creation order. Each
// file's deletion is retried under the bounded-count policy to absorb
// transient filesystem locks; a file still present after its remove counts
// as a failure. Files that survive all attempts are collected into one
// non-fatal ErrCleanup.
func (e *Episode) cleanup(pages []DownloadedPage) error {
	var left []string
	for i := len(pages) - 1; i >= 0; i-- {
		path := pages[i].Path
		err := e.FSPolicy.Do(context.Background(), func(context.Context) error {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s still present after remove", path)
			}
			return nil
		})
		if err != nil {
			e.log.Warn("temp page delete failed",
				"episode", e.Title, "path", path, "err", err)
			left = append(left, path)
		}
	}
	if len(left) > 0 {
		return fmt.Errorf("%w: %d files left behind: %s",
			ErrCleanup, len(left), strings.Join(left, ", "))
	}
	return nil
}
