package cmd

import (
	"fmt"
	"slices"

	"github.com/zjrosen/mergelens/internal/git"
	"github.com/zjrosen/mergelens/internal/log"
	"github.com/zjrosen/mergelens/internal/watcher"
)

// repoStateFiles are git files whose changes invalidate a view: the index moves on
// git add and git rm, HEAD on commits, checkouts and rebase steps.
var repoStateFiles = []string{"index", "HEAD"}

// startWatcher watches paths plus the repository state files of executor's repo.
func startWatcher(executor *git.RealExecutor, paths []string) (*watcher.Watcher, <-chan struct{}, error) {
	all := slices.Clone(paths)
	for _, name := range repoStateFiles {
		p, err := executor.GitPath(name)
		if err != nil {
			return nil, nil, fmt.Errorf("locating git %s: %w", name, err)
		}
		all = append(all, p)
	}

	wcfg := watcher.DefaultConfig(all...)
	if cfg.Watch.Debounce > 0 {
		wcfg.DebounceDur = cfg.Watch.Debounce
	}

	w, err := watcher.New(wcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating watcher: %w", err)
	}
	onChange, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, nil, fmt.Errorf("starting watcher: %w", err)
	}
	log.Info(log.CatWatcher, "watching", "files", len(all), "debounce", wcfg.DebounceDur)
	return w, onChange, nil
}
