package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/partbench/partsync/internal/download"
)

// DownloadUI renders one mpb progress bar per concurrently downloading
// file. It implements download.Observer. On a non-terminal stderr the bars
// are discarded and downloads stay silent.
type DownloadUI struct {
	progress   *mpb.Progress
	isTerminal bool

	mu         sync.Mutex
	totalFiles int
	started    int
}

// NewDownloadUI creates a download UI. The batch size arrives later via
// BatchStarted, once the fileset query has run.
func NewDownloadUI() *DownloadUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(80),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &DownloadUI{
		progress:   p,
		isTerminal: isTerminal,
	}
}

// BatchStarted records the batch size so bars can be labeled "[i/total]".
func (u *DownloadUI) BatchStarted(total int) {
	u.mu.Lock()
	u.totalFiles = total
	u.mu.Unlock()
}

// FileStarted creates a progress bar for one file. size is the response
// Content-Length; unknown sizes get an indeterminate single-step bar.
func (u *DownloadUI) FileStarted(item download.Item, size int64) download.FileObserver {
	u.mu.Lock()
	u.started++
	index := u.started
	batchTotal := u.totalFiles
	u.mu.Unlock()

	barTotal := size
	if barTotal <= 0 {
		barTotal = 1
	}

	name := filepath.Base(item.Path)
	label := fmt.Sprintf("[%d] %s", index, name)
	if batchTotal > 0 {
		label = fmt.Sprintf("[%d/%d] %s", index, batchTotal, name)
	}
	bar := u.progress.New(barTotal,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace),
		),
		mpb.BarRemoveOnComplete(),
	)

	return &fileBar{bar: bar, sized: size > 0}
}

// Wait blocks until all bars have rendered their final state.
func (u *DownloadUI) Wait() {
	u.progress.Wait()
}

type fileBar struct {
	bar   *mpb.Bar
	sized bool
}

func (f *fileBar) Write(p []byte) (int, error) {
	if f.sized {
		f.bar.IncrBy(len(p))
	}
	return len(p), nil
}

func (f *fileBar) Done(err error, elapsed time.Duration) {
	if err != nil {
		f.bar.Abort(true)
		return
	}
	if !f.sized {
		f.bar.SetTotal(1, true)
		return
	}
	// Force completion in case Content-Length overshot the body.
	f.bar.SetTotal(-1, true)
}
