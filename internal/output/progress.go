package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// ProgressBar represents an ASCII progress bar with color support
type ProgressBar struct {
	current     int
	total       int
	width       int
	enableColor bool
	prefix      string
	mu          sync.RWMutex
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total, width int, enableColor bool) *ProgressBar {
	if width < 1 {
		width = 10
	}
	return &ProgressBar{
		total:       total,
		width:       width,
		enableColor: enableColor,
	}
}

// Update sets the current progress value
func (pb *ProgressBar) Update(current int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = current
}

// SetPrefix sets a custom prefix for the progress bar
func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.prefix = prefix
}

// Render generates the ASCII progress bar string
func (pb *ProgressBar) Render() string {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	perc := model.Progress{Completed: pb.current, Total: pb.total}.Percent()
	filled := (perc * pb.width) / 100

	bar := "[" + strings.Repeat("=", filled) + strings.Repeat(" ", pb.width-filled) + "]"
	result := fmt.Sprintf("%s%s %d/%d (%d%%)", pb.prefix, bar, pb.current, pb.total, perc)

	if !pb.enableColor {
		return result
	}
	if perc < 100 {
		return paint(color.FgCyan, true).Sprint(result)
	}
	return paint(color.FgGreen, true).Sprint(result)
}

func paint(attr color.Attribute, enable bool) *color.Color {
	c := color.New(attr)
	if enable {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\033[K"

// ConsoleProgress prints one line per finished pair plus a progress bar.
// In live mode the bar stays on the last terminal line and is redrawn
// after every pair. It satisfies engine.Observer.
type ConsoleProgress struct {
	w     io.Writer
	color bool
	live  bool
	bar   *ProgressBar
}

// NewConsoleProgress writes progress to w, colored when enableColor is set.
func NewConsoleProgress(w io.Writer, enableColor bool) *ConsoleProgress {
	return &ConsoleProgress{w: w, color: enableColor}
}

// Live toggles redrawing the bar under the row lines. Only use it when w is
// a terminal.
func (c *ConsoleProgress) Live(on bool) *ConsoleProgress {
	c.live = on
	return c
}

func (c *ConsoleProgress) OnStart(total int) {
	c.bar = NewProgressBar(total, 30, c.color)
	c.bar.SetPrefix("Progress ")
	fmt.Fprintf(c.w, "%s %d pairs\n", paint(color.Bold, c.color).Sprint("Benchmark:"), total)
	if c.live {
		fmt.Fprint(c.w, c.bar.Render())
	}
}

func (c *ConsoleProgress) OnRow(row model.ResultRow, p model.Progress) {
	c.bar.Update(p.Completed)
	if c.live {
		fmt.Fprint(c.w, clearLine)
	}

	status := paint(color.FgGreen, c.color).Sprintf("OK (%.2fs)", row.Seconds())
	if row.Failed {
		status = paint(color.FgRed, c.color).Sprintf("FAILED: %s", firstLine(row.Output))
	}
	fmt.Fprintf(c.w, "  [%d/%d] [%s] %s | %s ... %s\n", p.Completed, p.Total, row.Language, row.Name, row.Model, status)
	if c.live {
		fmt.Fprint(c.w, c.bar.Render())
	}
}

func (c *ConsoleProgress) OnComplete(table *model.ResultTable) {
	if c.bar == nil {
		c.bar = NewProgressBar(0, 30, c.color)
		c.bar.SetPrefix("Progress ")
	}
	if c.live {
		fmt.Fprint(c.w, clearLine)
	}
	fmt.Fprintln(c.w, c.bar.Render())

	failed := 0
	for _, row := range table.Rows() {
		if row.Failed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintln(c.w, paint(color.FgYellow, c.color).Sprintf("%d of %d pairs failed", failed, table.Len()))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
