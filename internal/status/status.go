// Package status renders run progress to a terminal: a single
// updating line ("revision N/M, K commits", cut to the terminal width)
// when the output is a TTY. Off a terminal no progress lines are
// written; only verbose detail lines and the final summary appear.
package status

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Reporter renders progress updates to w.
type Reporter struct {
	w          io.Writer
	fd         int
	isTerminal bool
	verbose    bool
	lastWidth  int
}

// New returns a Reporter writing to w. fd is the file descriptor backing
// w (used only for terminal and width detection; pass -1 if w is not a *os.File).
func New(w io.Writer, fd int, verbose bool) *Reporter {
	return &Reporter{w: w, fd: fd, isTerminal: fd >= 0 && term.IsTerminal(fd), verbose: verbose}
}

// Progress reports current revision/total and the running commit count.
// On a terminal this overwrites the previous line; otherwise
// it is a no-op (verbose mode uses Detail instead to avoid doubling up).
func (r *Reporter) Progress(revision, total, commits int) {
	if !r.isTerminal || r.verbose {
		return
	}
	width, _, err := term.GetSize(r.fd)
	if err != nil || width <= 0 {
		width = 80
	}
	r.lastWidth = width

	line := fmt.Sprintf("revision %d/%d, %d commits", revision, total, commits)
	if len(line) > width {
		line = line[:width]
	}
	pad := width - len(line)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(r.w, "\r%s%s", line, strings.Repeat(" ", pad))
}

// Detail emits a single descriptive line (e.g. describe_change output),
// only when verbose logging is enabled.
func (r *Reporter) Detail(format string, args ...any) {
	if !r.verbose {
		return
	}
	if r.isTerminal && r.lastWidth > 0 {
		fmt.Fprintf(r.w, "\r%s\n", strings.Repeat(" ", r.lastWidth))
	}
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Finish clears the progress line, if one was drawn, and prints a final
// summary.
func (r *Reporter) Finish(revisions, commits int) {
	if r.isTerminal && r.lastWidth > 0 {
		fmt.Fprintf(r.w, "\r%s\r", strings.Repeat(" ", r.lastWidth))
	}
	fmt.Fprintf(r.w, "converted %d revisions into %d commits\n", revisions, commits)
}
