package dialog

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/upi"
)

const (
	cashFailedMessage = "Failed to record cash payment."
	cashLocalMessage  = "Cash payment recorded locally."
)

// CashDialog confirms and records a cash settlement.
type CashDialog struct {
	machine
	recorder Recorder
	updater  Updater
	notifier Notifier
	cfg      config
}

// NewCashDialog creates a closed cash dialog.
func NewCashDialog(recorder Recorder, updater Updater, notifier Notifier, opts ...Option) *CashDialog {
	return &CashDialog{
		recorder: recorder,
		updater:  updater,
		notifier: notifier,
		cfg:      newConfig(config{}, opts),
	}
}

// Open shows the dialog for t, replacing any trigger bound earlier.
func (d *CashDialog) Open(t models.PaymentTrigger) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open(t)
}

// Prompt is the confirmation question, or "" when closed.
func (d *CashDialog) Prompt() string {
	t, ok := d.Trigger()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Record cash payment of %s to %s?", upi.DisplayAmount(t.Amount), t.ReceiverName)
}

// Cancel closes the dialog without side effects.
func (d *CashDialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel()
}

// Confirm records the pending cash payment. An unusable amount is reported
// and leaves the dialog open. Otherwise the dialog closes once the recorder
// answers, whatever the answer, and the user gets exactly one notice.
func (d *CashDialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.state == Open && !upi.IsUsableAmount(d.trigger.Amount) {
		d.mu.Unlock()
		d.notifier.Notify("Amount must be a positive number.")
		return ErrInvalidAmount
	}
	t, err := d.begin()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	defer d.finish()

	amount := upi.StripAmount(t.Amount)
	res := d.recorder.Record(ctx, models.SettlementRequest{
		Payee:   t.ReceiverName,
		Amount:  amount,
		Method:  models.MethodCash,
		EventID: d.cfg.eventID,
	})

	if !res.Success {
		d.cfg.logger.Warn("Cash settlement not recorded", "payee", t.ReceiverName, "error", res.Error)
		d.notifier.Notify(errorMessage(res, cashFailedMessage))
		return nil
	}

	d.updater.MarkSettled(t.ID, models.MethodCash, amount)
	if res.Local {
		d.notifier.Notify(cashLocalMessage)
		return nil
	}
	d.notifier.Notify(fmt.Sprintf("Cash payment of ₹%s recorded for %s", amount, t.ReceiverName))
	return nil
}
