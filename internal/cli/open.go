package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/partbench/partsync/internal/cache"
	"github.com/partbench/partsync/internal/host"
	"github.com/partbench/partsync/internal/progress"
	syncpkg "github.com/partbench/partsync/internal/sync"
)

// newOpenCmd creates the 'open' command: the CLI equivalent of
// double-clicking an entry in the library browser.
func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a library entry: expand a folder or hand a file to the CAD host",
		Long: `Opens a path inside the library.

A component folder is expanded: its modifications are refetched from the
catalog and written as subfolders. A modification folder is expanded: its
fileset files are downloaded into it. A file is dispatched to the host CAD
application (imported or merged depending on its format).

Opening a folder always refetches from the catalog; the markers on disk
are snapshots, not a source of truth.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot open %s: %w", path, err)
			}

			if !info.IsDir() {
				return openFile(path)
			}
			return openDir(path)
		},
	}
}

// openFile dispatches a downloaded file to the host application.
func openFile(path string) error {
	h := host.NewLoggingHost(GetLogger())
	action, err := host.Dispatch(h, path)
	if err != nil {
		return err
	}
	switch action {
	case host.ActionImport:
		fmt.Printf("Imported geometry: %s\n", filepath.Base(path))
	case host.ActionMerge:
		fmt.Printf("Merged document: %s\n", filepath.Base(path))
	default:
		fmt.Printf("No handler for %s, file left in place\n", filepath.Base(path))
	}
	return nil
}

// openDir expands a component or modification directory.
func openDir(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	kind, err := cache.DetectKind(dir)
	if err != nil {
		return fmt.Errorf("%s is not a library entry: %w", dir, err)
	}

	switch kind {
	case cache.KindComponent:
		o := newOrchestrator(cfg, nil)
		report, err := o.UpdateComponent(rootContext, dir)
		if err != nil {
			return err
		}
		printComponentReport(report)
		return nil

	case cache.KindModification:
		ui := progress.NewDownloadUI()
		o := newOrchestrator(cfg, ui)
		report, err := o.UpdateModification(rootContext, dir)
		ui.Wait()
		if err != nil {
			return err
		}
		printModificationReport(report)
		return nil
	}
	return fmt.Errorf("unknown marker kind %q in %s", kind, dir)
}

func printComponentReport(report *syncpkg.Report) {
	if report.Outcome != syncpkg.OutcomeSynced {
		fmt.Println(report.Outcome.Message())
		return
	}
	fmt.Printf("%d modifications:\n", len(report.Modifications))
	for _, m := range report.Modifications {
		fmt.Printf("  %s\n", m.Name)
	}
}

func printModificationReport(report *syncpkg.Report) {
	switch report.Outcome {
	case syncpkg.OutcomeSynced:
		fmt.Printf("Downloaded %d files in %s\n", len(report.Downloads), report.TotalElapsed().Round(time.Millisecond))
	case syncpkg.OutcomePartialDownload:
		fmt.Printf("Downloaded %d files, %d failed:\n", len(report.Downloads), len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  %s: %v\n", filepath.Base(f.Item.Path), f.Err)
		}
	default:
		fmt.Println(report.Outcome.Message())
	}
}
