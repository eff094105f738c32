// Package progress renders sync and download progress on the terminal.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter is the interface for step-level progress reporting (favorites
// sync, component expansion). The download fan-out uses DownloadUI instead.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
}

// CLIReporter implements Reporter with a single progress bar on stderr.
type CLIReporter struct {
	bar *progressbar.ProgressBar
}

// NewCLIReporter creates a new CLI progress reporter.
func NewCLIReporter() *CLIReporter {
	return &CLIReporter{}
}

// Start initializes the progress bar with total count and description.
func (p *CLIReporter) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIReporter) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIReporter) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// NullReporter discards all progress events. Used when stderr is not a
// terminal or in tests.
type NullReporter struct{}

func (NullReporter) Start(total int64, description string) {}
func (NullReporter) Update(current int64)                  {}
func (NullReporter) Finish()                               {}
func (NullReporter) Error(err error)                       {}
