// Package terminal is the text front end of the settlement board: it prints
// notices, hands deep links to the desktop, and runs the interactive loop.
package terminal

import (
	"fmt"
	"io"
	"sync"
)

// Console prints user notices, one per line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "» %s\n", message)
}
