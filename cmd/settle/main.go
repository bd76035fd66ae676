// Command settle shows what you owe in an event and settles it in cash or
// through a UPI app.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/settleup/internal/board"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/dialog"
	"github.com/mmynk/settleup/internal/rpc"
	"github.com/mmynk/settleup/internal/session"
	"github.com/mmynk/settleup/internal/settlement"
	"github.com/mmynk/settleup/internal/terminal"
	"github.com/mmynk/settleup/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("settle failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewClient()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	baseURL := cfg.ServerURL
	token := cfg.SessionToken
	if token == "" {
		loginCtx, cancelLogin := context.WithTimeout(ctx, cfg.Timeout)
		token, err = session.Login(loginCtx, http.DefaultClient, baseURL, cfg.Username, cfg.Password)
		cancelLogin()
		if err != nil {
			return err
		}
		logger.Debug("Logged in", "username", cfg.Username)
	}
	client := session.New(baseURL, token, nil)

	duesCtx, cancelDues := context.WithTimeout(ctx, cfg.Timeout)
	dues, err := client.ListDues(duesCtx, cfg.EventID)
	cancelDues()
	if err != nil {
		return err
	}
	b := board.New(dues.Dues)
	logger.Debug("Loaded dues", "event_id", cfg.EventID, "count", b.Len(), "total", dues.TotalDue)

	opts := []settlement.Option{
		settlement.WithHTTPClient(client.HTTPClient()),
		settlement.WithTimeout(cfg.Timeout),
		settlement.WithLogger(logger),
	}
	if endpoint := cfg.RecordEndpoint(rpc.SettlementRecordPaymentProcedure); endpoint != nil {
		opts = append(opts, settlement.WithEndpoint(endpoint.String()))
	}
	recorder, err := settlement.NewRecorder(client, opts...)
	if err != nil {
		return err
	}

	var opener terminal.Opener
	if cfg.OpenLinks {
		opener = terminal.XDGOpen
	}
	console := terminal.NewConsole(os.Stdout)
	dialogOpts := []dialog.Option{dialog.WithEventID(cfg.EventID), dialog.WithLogger(logger)}
	if cfg.CallbackURL != "" {
		dialogOpts = append(dialogOpts, dialog.WithCallbackURL(cfg.CallbackURL))
	}

	app := terminal.NewApp(b,
		dialog.NewCashDialog(recorder, b, console, dialogOpts...),
		dialog.NewUPIDialog(recorder, b, console, terminal.NewLinkNavigator(os.Stdout, opener), dialogOpts...),
		os.Stdout,
		terminal.WithLogger(logger),
	)
	if dues.TotalDue != "" {
		fmt.Fprintf(os.Stdout, "Total due: ₹%s\n", dues.TotalDue)
	}
	if err := app.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
