// Package board holds the in-page view of outstanding dues: one block per
// PaymentTrigger, each carrying at most one settlement badge.
package board

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/upi"
)

// Block is one rendered due and its badge, if settled during this session.
type Block struct {
	Trigger models.PaymentTrigger
	Badge   *models.SettlementBadge
}

// Settled reports whether the block carries a badge.
func (b Block) Settled() bool {
	return b.Badge != nil
}

// Board is safe for concurrent use. Nothing on it is persisted: a fresh
// board built from the server's dues is the authoritative state.
type Board struct {
	mu     sync.RWMutex
	order  []string
	blocks map[string]*Block
}

// New creates a board with one block per trigger, in the given order.
// Triggers with duplicate IDs keep the first occurrence.
func New(triggers []models.PaymentTrigger) *Board {
	b := &Board{blocks: make(map[string]*Block, len(triggers))}
	for _, t := range triggers {
		if _, exists := b.blocks[t.ID]; exists {
			continue
		}
		b.order = append(b.order, t.ID)
		b.blocks[t.ID] = &Block{Trigger: t}
	}
	return b
}

// MarkSettled attaches a "Paid via {method} ₹{amount}" badge to the block
// keyed by triggerID, replacing any earlier badge. It reports whether the
// block exists.
func (b *Board) MarkSettled(triggerID string, method models.Method, amount string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	block, ok := b.blocks[triggerID]
	if !ok {
		return false
	}
	block.Badge = &models.SettlementBadge{Method: method, Amount: upi.StripAmount(amount)}
	return true
}

// Block returns a copy of the block keyed by triggerID.
func (b *Board) Block(triggerID string) (Block, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	block, ok := b.blocks[triggerID]
	if !ok {
		return Block{}, false
	}
	return copyBlock(block), true
}

// Blocks returns copies of all blocks in render order.
func (b *Board) Blocks() []Block {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Block, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, copyBlock(b.blocks[id]))
	}
	return out
}

// Len returns the number of blocks.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

// Render writes the board as an aligned table, numbering blocks from 1.
func (b *Board) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPAY TO\tAMOUNT\tUPI\tSTATUS")
	for i, block := range b.Blocks() {
		handle := block.Trigger.ReceiverHandle
		if handle == "" {
			handle = "-"
		}
		status := "due"
		if block.Badge != nil {
			status = block.Badge.Text()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			i+1,
			block.Trigger.ReceiverName,
			upi.DisplayAmount(block.Trigger.Amount),
			handle,
			status,
		)
	}
	return tw.Flush()
}

func copyBlock(b *Block) Block {
	out := Block{Trigger: b.Trigger}
	if b.Badge != nil {
		badge := *b.Badge
		out.Badge = &badge
	}
	return out
}
