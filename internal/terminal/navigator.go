package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Opener starts the program that handles a link and returns without waiting
// for it to exit.
type Opener func(link string) error

// XDGOpen hands link to xdg-open.
func XDGOpen(link string) error {
	cmd := exec.Command("xdg-open", link)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xdg-open: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("xdg-open exited", "error", err)
		}
	}()
	return nil
}

// LinkNavigator prints deep links and, when an Opener is set, launches them.
type LinkNavigator struct {
	w    io.Writer
	open Opener
}

// NewLinkNavigator creates a navigator writing to w. open may be nil to only
// print links.
func NewLinkNavigator(w io.Writer, open Opener) *LinkNavigator {
	return &LinkNavigator{w: w, open: open}
}

func (n *LinkNavigator) Navigate(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(n.w, "Pay with your UPI app: %s\n", link)
	if n.open == nil {
		return nil
	}
	return n.open(link)
}
