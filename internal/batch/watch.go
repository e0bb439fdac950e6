package batch

import (
	"context"
	"log"
	"path/filepath"

	"MathUtils/internal/model"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the job file at path and calls onChange with the reloaded
// jobs each time it is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so a save that
// renames a temp file over path keeps being observed.
//
// If a reload fails the error is logged and onChange is not called, so the
// caller keeps its previous job list.
func Watch(ctx context.Context, path string, onChange func([]model.Job)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	log.Printf("[INFO] watching job file: %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			jobs, err := LoadJobs(path)
			if err != nil {
				log.Printf("[ERROR] reload job file %s: %v", path, err)
				continue
			}

			log.Printf("[INFO] job file reloaded: %d jobs", len(jobs))
			onChange(jobs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[ERROR] job file watcher: %v", err)
		}
	}
}
