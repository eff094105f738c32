package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/partbench/partsync/internal/cache"
)

// newTreeCmd creates the 'tree' command: an offline view of the library.
func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the local library tree",
		Long: `Prints the library directory tree from the markers on disk. This is a
purely local view; nothing is fetched from the catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.LibraryRoot == "" {
				return fmt.Errorf("no library root configured, run 'partsync config init'")
			}
			return printTree(cfg.LibraryRoot)
		},
	}
}

func printTree(root string) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		fmt.Println("Library is empty, run 'partsync update' first")
		return nil
	}
	if err != nil {
		return err
	}
	sortDirsFirst(entries)

	fmt.Println(root)
	printed := false
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		compDir := filepath.Join(root, e.Name())
		c, err := cache.ReadComponent(compDir)
		if err != nil {
			// Not every folder under the root is a component.
			continue
		}
		printed = true
		fmt.Printf("├── %s  (by %s)\n", e.Name(), c.Owner.Username)
		printModifications(compDir)
	}
	if !printed {
		fmt.Println("Library is empty, run 'partsync update' first")
	}
	return nil
}

func printModifications(compDir string) {
	entries, err := os.ReadDir(compDir)
	if err != nil {
		return
	}
	sortDirsFirst(entries)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		modDir := filepath.Join(compDir, e.Name())
		if _, err := cache.ReadModification(modDir); err != nil {
			continue
		}
		fmt.Printf("│   ├── %s\n", e.Name())
		printFiles(modDir)
	}
}

func printFiles(modDir string) {
	entries, err := os.ReadDir(modDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == string(cache.KindModification) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Printf("│   │   ├── %s  (%s)\n", e.Name(), formatSize(info.Size()))
	}
}

func sortDirsFirst(entries []os.DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
