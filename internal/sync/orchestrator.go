// Package sync drives the four-level catalog traversal: favorites →
// modifications → filesets → files.
//
// Each level is a synchronous fetch → decode → reconcile step. Reconciling
// means replacing marker snapshots in the local cache; nothing is merged
// and nothing is rolled back. When a step fails, markers already written
// stay written and the step is simply abandoned.
package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/partbench/partsync/internal/api"
	"github.com/partbench/partsync/internal/cache"
	"github.com/partbench/partsync/internal/diskspace"
	"github.com/partbench/partsync/internal/download"
	"github.com/partbench/partsync/internal/logging"
	"github.com/partbench/partsync/internal/models"
	"github.com/partbench/partsync/internal/progress"
	"github.com/partbench/partsync/internal/util/paths"
	"github.com/partbench/partsync/internal/util/sanitize"
)

// Outcome classifies how a sync step ended. Empty remote result sets are
// distinct outcomes, not errors: the user needs to see "no modifications",
// not a failure.
type Outcome int

const (
	// OutcomeSynced means the step completed and the cache was updated.
	OutcomeSynced Outcome = iota
	// OutcomeNoFavorites means the favorites query returned nothing.
	OutcomeNoFavorites
	// OutcomeNoModifications means the component has no modifications.
	OutcomeNoModifications
	// OutcomeFilesetNotFound means no fileset matches the host program.
	OutcomeFilesetNotFound
	// OutcomeNoFiles means the selected fileset contains no files.
	OutcomeNoFiles
	// OutcomePartialDownload means a subset of the file batch failed.
	OutcomePartialDownload
)

// Message returns the user-visible description of the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSynced:
		return "Synced"
	case OutcomeNoFavorites:
		return "No favorite components"
	case OutcomeNoModifications:
		return "No modifications for the component"
	case OutcomeFilesetNotFound:
		return "Fileset not found for this application"
	case OutcomeNoFiles:
		return "No files in fileset"
	case OutcomePartialDownload:
		return "Some files failed to download"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Report describes what one sync step did. Only the fields relevant to the
// step that produced it are populated.
type Report struct {
	Outcome       Outcome
	Components    []models.Component
	Modifications []models.Modification
	Fileset       *models.Fileset
	Downloads     []download.Result
	Failures      []download.Failure
}

// TotalElapsed sums the wall-clock time of all completed downloads.
func (r *Report) TotalElapsed() time.Duration {
	var total time.Duration
	for _, d := range r.Downloads {
		total += d.Elapsed
	}
	return total
}

// Orchestrator owns write access to cache markers and coordinates the
// catalog client and the downloader.
type Orchestrator struct {
	client      *api.Client
	downloader  *download.Downloader
	logger      *logging.Logger
	reporter    progress.Reporter
	libraryRoot string
	program     string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter attaches a step progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// New creates an Orchestrator rooted at libraryRoot, filtering filesets to
// the given host program identifier.
func New(client *api.Client, downloader *download.Downloader, logger *logging.Logger, libraryRoot, program string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		downloader:  downloader,
		logger:      logger,
		reporter:    progress.NullReporter{},
		libraryRoot: libraryRoot,
		program:     program,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UpdateLibrary performs the favorites sync: one folder plus component
// marker per favorited component. Folders for components that are no
// longer favorited remotely are left in place; the cache never deletes.
func (o *Orchestrator) UpdateLibrary(ctx context.Context) (*Report, error) {
	components, err := o.client.FavoriteComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("favorites query failed: %w", err)
	}

	if len(components) == 0 {
		o.logger.Info().Msg("no favorite components on the catalog")
		return &Report{Outcome: OutcomeNoFavorites}, nil
	}

	o.reporter.Start(int64(len(components)), "updating library")
	for i, c := range components {
		dir := cache.ComponentDir(o.libraryRoot, c)
		if err := cache.WriteComponent(dir, c); err != nil {
			o.reporter.Error(err)
			return nil, fmt.Errorf("failed to cache component %s: %w", c.UUID, err)
		}
		o.logger.Debug().Str("uuid", c.UUID).Str("dir", dir).Msg("component cached")
		o.reporter.Update(int64(i + 1))
	}
	o.reporter.Finish()

	o.logger.Info().Int("components", len(components)).Msg("library updated")
	return &Report{Outcome: OutcomeSynced, Components: components}, nil
}

// UpdateComponent expands a component directory: it re-reads the component
// marker and refetches the modification list. Opening is always a refetch,
// never a replay of cached children, so the operation is idempotent but
// not free.
func (o *Orchestrator) UpdateComponent(ctx context.Context, dir string) (*Report, error) {
	component, err := cache.ReadComponent(dir)
	if err != nil {
		return nil, err
	}
	o.logger.Info().Str("uuid", component.UUID).Str("name", component.Name).Msg("updating component")

	modifications, err := o.client.Modifications(ctx, component.UUID)
	if err != nil {
		return nil, fmt.Errorf("modifications query failed: %w", err)
	}

	if len(modifications) == 0 {
		return &Report{Outcome: OutcomeNoModifications}, nil
	}

	for _, m := range modifications {
		modDir := cache.ModificationDir(dir, m)
		if err := cache.WriteModification(modDir, m); err != nil {
			return nil, fmt.Errorf("failed to cache modification %s: %w", m.UUID, err)
		}
	}

	return &Report{Outcome: OutcomeSynced, Modifications: modifications}, nil
}

// UpdateModification expands a modification directory: it refetches the
// filesets matching the host program, takes the first one in server order,
// and downloads its files into the directory.
//
// Using only the first matching fileset mirrors the catalog's
// one-fileset-per-program convention; additional matches are ignored, not
// merged.
func (o *Orchestrator) UpdateModification(ctx context.Context, dir string) (*Report, error) {
	modification, err := cache.ReadModification(dir)
	if err != nil {
		return nil, err
	}
	o.logger.Info().Str("uuid", modification.UUID).Str("name", modification.Name).Msg("updating modification")

	filesets, err := o.client.Filesets(ctx, modification.UUID, o.program)
	if err != nil {
		return nil, fmt.Errorf("filesets query failed: %w", err)
	}
	if len(filesets) == 0 {
		return &Report{Outcome: OutcomeFilesetNotFound}, nil
	}
	fileset := filesets[0]

	files, err := o.client.FilesetFiles(ctx, fileset.UUID)
	if err != nil {
		return nil, fmt.Errorf("fileset files query failed: %w", err)
	}
	if len(files) == 0 {
		return &Report{Outcome: OutcomeNoFiles, Fileset: &fileset}, nil
	}

	targets := make([]paths.DownloadTarget, 0, len(files))
	var totalSize int64
	for _, f := range files {
		name := sanitize.FileName(f.Filename)
		targets = append(targets, paths.DownloadTarget{
			UUID:      f.UUID,
			Filename:  f.Filename,
			URL:       f.DownloadURL,
			LocalPath: filepath.Join(dir, name),
			Size:      f.Size,
		})
		totalSize += f.Size
	}
	targets, collisions := paths.ResolveCollisions(targets)
	if collisions > 0 {
		o.logger.Warn().Int("files", collisions).Msg("duplicate filenames in fileset, uuids appended")
	}

	if totalSize > 0 {
		if err := diskspace.CheckAvailableSpace(targets[0].LocalPath, totalSize, 1.1); err != nil {
			return nil, err
		}
	}

	items := make([]download.Item, 0, len(targets))
	for _, t := range targets {
		items = append(items, download.Item{URL: t.URL, Path: t.LocalPath})
	}

	results, err := o.downloader.FetchAll(ctx, items)
	report := &Report{Fileset: &fileset, Downloads: results}
	if err != nil {
		partial, ok := err.(*download.PartialError)
		if !ok {
			return nil, err
		}
		report.Outcome = OutcomePartialDownload
		report.Failures = partial.Failures
		return report, nil
	}

	report.Outcome = OutcomeSynced
	return report, nil
}
