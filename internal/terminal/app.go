package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmynk/settleup/internal/board"
	"github.com/mmynk/settleup/internal/dialog"
	"github.com/mmynk/settleup/internal/models"
)

const help = `Commands:
  list          show your dues
  cash <n>      record a cash payment for due n
  upi <n>       pay due n with a UPI app
  help          show this help
  quit          exit`

// App drives the board and both dialogs from line-based input.
type App struct {
	board *board.Board
	cash  *dialog.CashDialog
	upi   *dialog.UPIDialog
	out    io.Writer
	logger *slog.Logger
	lines  <-chan string
}

// AppOption configures an App.
type AppOption func(*App)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) AppOption {
	return func(a *App) { a.logger = l }
}

// NewApp wires the board and dialogs to in and out. Reading starts on Run.
func NewApp(b *board.Board, cash *dialog.CashDialog, upiDialog *dialog.UPIDialog, out io.Writer, opts ...AppOption) *App {
	a := &App{board: b, cash: cash, upi: upiDialog, out: out, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run shows the board and serves commands until quit, end of input, or ctx
// is done.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	a.lines = readLines(ctx, in)

	if a.board.Len() == 0 {
		fmt.Fprintln(a.out, "You are all settled up.")
	}
	a.render()
	fmt.Fprintln(a.out, `Type "help" for commands.`)

	for {
		line, err := a.prompt(ctx, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "q", "quit", "exit":
			return nil
		case "l", "list":
			a.render()
		case "h", "help", "?":
			fmt.Fprintln(a.out, help)
		case "cash", "upi":
			t, ok := a.trigger(fields[1:])
			if !ok {
				continue
			}
			if cmd == "cash" {
				err = a.payCash(ctx, t)
			} else {
				err = a.payUPI(ctx, t)
			}
			if err != nil {
				return err
			}
		default:
			fmt.Fprintf(a.out, "Unknown command %q. Type \"help\" for commands.\n", fields[0])
		}
	}
}

func (a *App) payCash(ctx context.Context, t models.PaymentTrigger) error {
	if err := a.cash.Open(t); err != nil {
		fmt.Fprintln(a.out, err)
		return nil
	}
	fmt.Fprintln(a.out, a.cash.Prompt())

	ok, err := a.confirm(ctx, "Confirm? [y/N] ")
	if err != nil || !ok {
		a.dismiss("cash", a.cash.Cancel)
		return ignoreEOF(err)
	}
	if err := a.cash.Confirm(ctx); err != nil {
		// The notice has been shown; nothing left to do for this due.
		a.dismiss("cash", a.cash.Cancel)
		return nil
	}
	a.render()
	return nil
}

func (a *App) payUPI(ctx context.Context, t models.PaymentTrigger) error {
	if err := a.upi.Open(t); err != nil {
		fmt.Fprintln(a.out, err)
		return nil
	}
	view := a.upi.View()
	fmt.Fprintf(a.out, "Pay %s to %s\nReceiver UPI: %s\n", view.Amount, view.Receiver, view.Handle)

	for {
		handle, err := a.prompt(ctx, "Your UPI ID (blank to cancel): ")
		if err != nil || strings.TrimSpace(handle) == "" {
			a.dismiss("upi", a.upi.Cancel)
			return ignoreEOF(err)
		}
		a.upi.SetInput(handle)

		err = a.upi.Confirm(ctx)
		switch {
		case err == nil:
			a.render()
			return nil
		case errors.Is(err, dialog.ErrInvalidPayerHandle):
			continue
		case errors.Is(err, dialog.ErrInvalidReceiverHandle) && strings.TrimSpace(t.ReceiverHandle) == "":
			// The typed handle doubles as receiver when the profile has none.
			continue
		default:
			a.dismiss("upi", a.upi.Cancel)
			return nil
		}
	}
}

// dismiss closes a dialog. Cancel fails only while a submission is still
// outstanding, which leaves the dialog to close itself when it completes.
func (a *App) dismiss(name string, cancel func() error) {
	if err := cancel(); err != nil {
		a.logger.Warn("Dialog left open", "dialog", name, "error", err)
	}
}

// trigger resolves a 1-based block number from args.
func (a *App) trigger(args []string) (models.PaymentTrigger, bool) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Which due? e.g. cash 1")
		return models.PaymentTrigger{}, false
	}
	n, err := strconv.Atoi(args[0])
	blocks := a.board.Blocks()
	if err != nil || n < 1 || n > len(blocks) {
		fmt.Fprintf(a.out, "No due numbered %q.\n", args[0])
		return models.PaymentTrigger{}, false
	}
	return blocks[n-1].Trigger, true
}

func (a *App) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := a.prompt(ctx, question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (a *App) prompt(ctx context.Context, p string) (string, error) {
	fmt.Fprint(a.out, p)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (a *App) render() {
	if err := a.board.Render(a.out); err != nil {
		fmt.Fprintln(a.out, err)
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
