// Package progress provides progress reporting for long-running CLI
// operations such as bulk ingestion.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter reports progress of an operation with a known total.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a terminal progress bar, or a plain line-based
// reporter when running in a CI environment.
func NewReporter(description string) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LineReporter{Description: description, Out: os.Stderr}
	}
	return &terminalReporter{description: description}
}

type terminalReporter struct {
	description string
	bar         *progressbar.ProgressBar
}

func (r *terminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(r.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *terminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	if message != "" {
		r.bar.Describe(fmt.Sprintf("%s: %s", r.description, message))
	}
	r.bar.Set(current)
}

func (r *terminalReporter) Finish() {
	if r.bar != nil {
		r.bar.Finish()
	}
}

// LineReporter writes one line per update. Suited to CI logs where
// carriage-return redraws turn into noise.
type LineReporter struct {
	Description string
	Out         io.Writer
	total       int
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.Out, "%s: 0/%d\n", r.Description, total)
}

func (r *LineReporter) Update(current int, message string) {
	if message != "" {
		fmt.Fprintf(r.Out, "%s: %d/%d %s\n", r.Description, current, r.total, message)
		return
	}
	fmt.Fprintf(r.Out, "%s: %d/%d\n", r.Description, current, r.total)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.Out, "%s: done\n", r.Description)
}
