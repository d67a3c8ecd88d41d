package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kbukum/nanodraw/draw"
	"github.com/kbukum/nanodraw/logger"
)

const barWidth = 30

// progressPrinter renders generation progress: one updating line on a
// terminal, one log line per event otherwise.
type progressPrinter struct {
	w      io.Writer
	tty    bool
	log    *logger.Logger
	taskID string
	drawn  bool
}

func newProgressPrinter(w io.Writer, log *logger.Logger) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w), log: log}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// observe implements draw.ProgressFunc.
func (p *progressPrinter) observe(progress float64, ev *draw.Event) {
	if ev.ID != "" {
		p.taskID = ev.ID
	}
	if !p.tty {
		p.log.Info("progress", logger.Fields(
			logger.FieldProgress, progress,
			logger.FieldStatus, ev.Status,
			logger.FieldTaskID, ev.ID,
		))
		return
	}
	fmt.Fprintf(p.w, "\r%s %3.0f%% %-10s", bar(progress), progress, ev.Status)
	p.drawn = true
}

// done ends the progress line so later output starts on a fresh line.
func (p *progressPrinter) done() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

func bar(progress float64) string {
	filled := int(progress / 100 * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
