package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/partbench/partsync/internal/api"
	"github.com/partbench/partsync/internal/config"
	"github.com/partbench/partsync/internal/download"
	"github.com/partbench/partsync/internal/progress"
	syncpkg "github.com/partbench/partsync/internal/sync"
)

// newUpdateCmd creates the 'update' command: the favorites sync.
func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Sync favorited components into the library",
		Long: `Fetches your favorited components from the catalog and creates one
library folder per component. Folders for components no longer favorited
are left in place; partsync never deletes local data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			o := newOrchestrator(cfg, nil)
			report, err := o.UpdateLibrary(rootContext)
			if err != nil {
				return err
			}

			switch report.Outcome {
			case syncpkg.OutcomeNoFavorites:
				fmt.Println(report.Outcome.Message())
			default:
				fmt.Printf("Library updated: %d components\n", len(report.Components))
				for _, c := range report.Components {
					fmt.Printf("  %s\n", c.FolderName())
				}
			}
			return nil
		},
	}
}

// newOrchestrator wires config, catalog client and downloader into a sync
// orchestrator. observer may be nil for steps that download nothing.
func newOrchestrator(cfg *config.Config, observer download.Observer) *syncpkg.Orchestrator {
	log := GetLogger()
	client := api.NewClient(cfg)

	dlOpts := []download.Option{}
	if cfg.DownloadWorkers > 0 {
		dlOpts = append(dlOpts, download.WithWorkers(cfg.DownloadWorkers))
	}
	if cfg.DownloadTimeoutSeconds > 0 {
		dlOpts = append(dlOpts, download.WithTimeout(time.Duration(cfg.DownloadTimeoutSeconds)*time.Second))
	}
	if observer != nil {
		dlOpts = append(dlOpts, download.WithObserver(observer))
	}
	dl := download.New(log, dlOpts...)

	var reporter progress.Reporter = progress.NullReporter{}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		reporter = progress.NewCLIReporter()
	}

	return syncpkg.New(client, dl, log, cfg.LibraryRoot, cfg.Program, syncpkg.WithReporter(reporter))
}
