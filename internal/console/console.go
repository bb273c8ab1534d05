// Package console runs a screening conversation on a terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"screening-bot/internal/interviewer"
)

const (
	surface         = "console"
	defaultBarWidth = 30
	maxBarWidth     = 50
)

type Console struct {
	svc      *interviewer.Service
	in       io.Reader
	out      io.Writer
	barWidth int
}

func New(svc *interviewer.Service, in io.Reader, out io.Writer) *Console {
	return &Console{
		svc:      svc,
		in:       in,
		out:      out,
		barWidth: barWidth(out),
	}
}

// barWidth sizes the progress bar to a third of the terminal, or a fixed
// width when out is not a terminal.
func barWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultBarWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return defaultBarWidth
	}
	return max(10, min(maxBarWidth, cols/3))
}

// Run holds one conversation until it ends, the input is exhausted or ctx is
// cancelled. An unfinished conversation is recorded as terminated.
func (c *Console) Run(ctx context.Context) error {
	sess, resp := c.svc.Start(surface)
	c.print("Bot", resp.Message)
	c.progress(resp.Progress)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "You: ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		next, result := c.svc.Handle(ctx, sess, scanner.Text())
		sess = next
		c.print("Bot", result.Message)

		if sess.Done() {
			if result.RecordID != "" {
				fmt.Fprintf(c.out, "Saved as record %s\n", result.RecordID)
			}
			return nil
		}
		c.progress(result.Progress)
	}

	fmt.Fprintln(c.out)
	c.svc.Abandon(ctx, sess)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return ctx.Err()
}

func (c *Console) print(who, text string) {
	fmt.Fprintf(c.out, "\n%s: %s\n", who, text)
}

func (c *Console) progress(fraction float64) {
	fmt.Fprintln(c.out, ProgressBar(fraction, c.barWidth))
}

// ProgressBar renders fraction (clamped to [0, 1]) as "[####----] 50%".
func ProgressBar(fraction float64, width int) string {
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width))
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		fraction*100)
}
