// Package ui renders a pinned-header operator console: stats/dedup/
// scheduler summary lines plus a scrolling pane of recently served
// requests, over plain ANSI escapes. Adapted wholesale from the
// teacher's ansi_console.go/console_layout.go ring-pane renderer,
// retargeted from DX-cluster panes (calls/unlicensed/harmonics) to
// daemon panes (requests/dedup/scheduler/system).
package ui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/joergschultzelutter/mpad/dedup"
	"github.com/joergschultzelutter/mpad/scheduler"
	"github.com/joergschultzelutter/mpad/stats"
)

// Console is a lightweight, fixed-buffer console renderer. It is a
// no-op when mode != "ansi" or stdout is not a terminal.
type Console struct {
	mode string

	mu        sync.Mutex
	requests  ringPane
	system    ringPane
	renderBuf bytes.Buffer
	snapReq   []string
	snapSys   []string
	enabled   bool
}

type ringPane struct {
	lines []string
	idx   int
	count int
}

const paneLines = 10

// NewConsole returns a Console. mode selects the rendering surface:
// "ansi" draws the pinned dashboard, anything else (including "plain")
// renders nothing. Pane depth is sized to half the terminal height
// (capped at paneLines) when stdout is a real TTY, mirroring the
// teacher's consoleLayout.screenRows probing.
func NewConsole(mode string) *Console {
	enabled := mode == "ansi" && isatty.IsTerminal(os.Stdout.Fd())

	depth := paneLines
	if enabled {
		if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && h > 4 {
			if half := (h - 4) / 2; half > 0 && half < depth {
				depth = half
			}
		}
	}

	return &Console{
		mode:     mode,
		enabled:  enabled,
		requests: ringPane{lines: make([]string, depth)},
		system:   ringPane{lines: make([]string, depth)},
		snapReq:  make([]string, depth),
		snapSys:  make([]string, depth),
	}
}

// AppendRequest records one served request line (sender, action,
// outcome) in the scrolling requests pane.
func (c *Console) AppendRequest(line string) { c.append(&c.requests, line) }

// AppendSystem records an operational log line in the system pane.
func (c *Console) AppendSystem(line string) { c.append(&c.system, line) }

func (c *Console) append(pane *ringPane, line string) {
	if c == nil || !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pane.lines[pane.idx] = line
	pane.idx = (pane.idx + 1) % len(pane.lines)
	if pane.count < len(pane.lines) {
		pane.count++
	}
}

// Run renders the dashboard every tick until ctx is done. statsTracker,
// dedupCache, and sched feed the pinned header lines.
func (c *Console) Run(ctx context.Context, statsTracker *stats.Tracker, dedupCache *dedup.Cache, sched *scheduler.Scheduler) {
	if c == nil || !c.enabled {
		return
	}
	fmt.Fprint(os.Stdout, "\x1b[2J\x1b[H")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.render(statsTracker, dedupCache, sched)
		}
	}
}

func (c *Console) render(statsTracker *stats.Tracker, dedupCache *dedup.Cache, sched *scheduler.Scheduler) {
	c.mu.Lock()
	requests := snapshotPane(&c.requests, c.snapReq)
	system := snapshotPane(&c.system, c.snapSys)
	c.mu.Unlock()

	c.renderBuf.Reset()
	c.renderBuf.WriteString("\x1b[H")

	fmt.Fprintf(&c.renderBuf, "mpad  served=%d  uptime=%s\x1b[K\n",
		statsTracker.GetTotalServed(), statsTracker.GetUptime().Round(time.Second))
	fmt.Fprintf(&c.renderBuf, "dedup entries=%d  scheduler queue depth=%d\x1b[K\n",
		dedupCache.Len(), sched.QueueDepth())

	writePane(&c.renderBuf, "---- Recent requests ----", requests)
	writePane(&c.renderBuf, "---- System ----", system)

	c.renderBuf.WriteTo(os.Stdout)
}

func writePane(w *bytes.Buffer, title string, lines []string) {
	w.WriteString(title)
	w.WriteString("\x1b[K\n")
	for _, line := range lines {
		if line != "" {
			w.WriteString(line)
		}
		w.WriteString("\x1b[K\n")
	}
}

func snapshotPane(p *ringPane, buf []string) []string {
	if p.count == 0 {
		return buf[:0]
	}
	start := p.idx - p.count
	if start < 0 {
		start += len(p.lines)
	}
	limit := p.count
	if limit > len(buf) {
		limit = len(buf)
	}
	for i := 0; i < limit; i++ {
		pos := (start + i) % len(p.lines)
		buf[i] = strings.TrimRight(p.lines[pos], "\r\n")
	}
	return buf[:limit]
}
