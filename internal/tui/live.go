package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	reset       = "\033[0m"
)

var cellColors = map[grid.Status]string{
	grid.Empty:    "\033[90m",
	grid.Start:    "\033[1;32m",
	grid.End:      "\033[1;31m",
	grid.Visited:  "\033[35m",
	grid.Frontier: "\033[36m",
	grid.Path:     "\033[1;33m",
	grid.Obstacle: "\033[37m",
	grid.Blocked:  "\033[33m",
}

var cellGlyphs = map[grid.Status]string{
	grid.Empty:    ". ",
	grid.Start:    "S ",
	grid.End:      "E ",
	grid.Visited:  "o ",
	grid.Frontier: "+ ",
	grid.Path:     "* ",
	grid.Obstacle: "# ",
	grid.Blocked:  "X ",
}

// LiveRenderer redraws the grid on every engine tick, at most frameRate
// times per second. The last frame of a replay is always drawn.
type LiveRenderer struct {
	mu        sync.Mutex
	out       io.Writer
	title     string
	frameRate int
	color     bool
	lastFrame time.Time
	frames    int
}

func NewLiveRenderer(title string, frameRate int) *LiveRenderer {
	return NewLiveRendererTo(os.Stdout, title, frameRate, true)
}

func NewLiveRendererTo(out io.Writer, title string, frameRate int, color bool) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		title:     title,
		frameRate: frameRate,
		color:     color,
	}
}

func (r *LiveRenderer) OnTick(s replay.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.Done && time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.frames++
	r.render(s)
}

// Draw renders s unconditionally.
func (r *LiveRenderer) Draw(s replay.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.render(s)
}

func (r *LiveRenderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *LiveRenderer) render(s replay.Snapshot) {
	var b strings.Builder
	if r.color {
		b.WriteString(clearScreen)
	}
	status := "running"
	if s.Done {
		status = "done"
	}
	b.WriteString(fmt.Sprintf("  %s  step=%d visited=%d %s\n", r.title, s.StepIndex, s.VisitedCount, status))

	if s.Grid != nil {
		rule := "  " + strings.Repeat("-", s.Grid.Size()*2) + "\n"
		b.WriteString(rule)
		for row := 0; row < s.Grid.Size(); row++ {
			b.WriteString("  ")
			for _, c := range s.Grid.Row(row) {
				if r.color {
					b.WriteString(cellColors[c.Status])
					b.WriteString(cellGlyphs[c.Status])
					b.WriteString(reset)
				} else {
					b.WriteString(cellGlyphs[c.Status])
				}
			}
			b.WriteString("\n")
		}
		b.WriteString(rule)
	}

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() {
	if r.color {
		fmt.Fprint(r.out, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.color {
		fmt.Fprint(r.out, showCursor)
	}
}
