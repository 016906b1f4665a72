package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veldt-labs/quarry/internal/logger"
)

// debounce gives editors time to finish writing before a changed file is
// picked up.
const debounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Index new files as they appear in a directory",
	Long: `Watches a directory and indexes files as they are created or written.
Hidden files and subdirectories are ignored. Each file is indexed once per
run; later writes to the same file are skipped. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	eng, err := ensureEngine(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for new files. Ctrl-C to stop.\n", dir)

	indexed := make(map[string]bool)
	pending := make(map[string]*time.Timer)
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if skipPath(event.Name) || indexed[event.Name] {
				continue
			}
			// Restart the timer on every event so a file still being
			// written is only picked up once it goes quiet.
			if timer, ok := pending[event.Name]; ok {
				timer.Stop()
			}
			name := event.Name
			pending[name] = time.AfterFunc(debounce, func() { ready <- name })

		case path := <-ready:
			delete(pending, path)
			if indexed[path] {
				continue
			}

			text, err := extractText(path)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				continue
			}

			result, err := eng.AddDocument(ctx, text, filepath.Base(path))
			if err != nil {
				cmd.Printf("  skipped %s: %v\n", filepath.Base(path), err)
				continue
			}
			indexed[path] = true
			cmd.Printf("  indexed %s (%d chunks)\n", result.Filename, result.ChunkCount)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// skipPath reports whether the path is hidden or not a regular file.
func skipPath(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return !info.Mode().IsRegular()
}
