package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/upi"
)

const (
	handleUnavailable    = "Not available"
	receiverHandlePrompt = "Enter a valid receiver UPI ID!"
	payerHandlePrompt    = "Enter your UPI ID (your own UPI)"
	upiFailedMessage     = "Failed to record UPI payment."
	upiNavigateMessage   = "Could not open a UPI app."
)

// UPIView is what the UPI dialog displays.
type UPIView struct {
	Amount   string // with currency glyph, e.g. "₹500"
	Receiver string
	Handle   string // receiver handle or "Not available"
	Input    string // the handle typed by the payer
}

// UPIDialog validates handles, hands the payment to a UPI app through a deep
// link, and records the settlement when an endpoint is configured.
type UPIDialog struct {
	machine
	recorder  Recorder
	updater   Updater
	notifier  Notifier
	navigator Navigator
	cfg       config

	amountText string
	input      string
}

// NewUPIDialog creates a closed UPI dialog.
func NewUPIDialog(recorder Recorder, updater Updater, notifier Notifier, navigator Navigator, opts ...Option) *UPIDialog {
	return &UPIDialog{
		recorder:  recorder,
		updater:   updater,
		notifier:  notifier,
		navigator: navigator,
		cfg:       newConfig(config{note: upi.DefaultNote, newTxnRef: upi.NewTxnRef}, opts),
	}
}

// Open shows the dialog for t, replacing any trigger and typed input left
// from earlier.
func (d *UPIDialog) Open(t models.PaymentTrigger) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.open(t); err != nil {
		return err
	}
	d.amountText = upi.DisplayAmount(t.Amount)
	d.input = ""
	return nil
}

// View returns the dialog fields. The zero view is returned when closed.
func (d *UPIDialog) View() UPIView {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trigger == nil {
		return UPIView{}
	}
	handle := d.trigger.ReceiverHandle
	if strings.TrimSpace(handle) == "" {
		handle = handleUnavailable
	}
	return UPIView{
		Amount:   d.amountText,
		Receiver: d.trigger.ReceiverName,
		Handle:   handle,
		Input:    d.input,
	}
}

// SetInput records the payer's typed handle. Ignored unless the dialog is open.
func (d *UPIDialog) SetInput(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Open {
		d.input = s
	}
}

// Cancel closes the dialog and clears the typed handle.
func (d *UPIDialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.cancel(); err != nil {
		return err
	}
	d.input = ""
	return nil
}

// Confirm validates both handles and only then builds the deep link and
// navigates to it, exactly once. The receiver handle is the profile handle,
// or the typed one when the profile has none; the typed handle is also the
// payer's own. A validation failure is reported and leaves the dialog open.
//
// After navigation the settlement is submitted with method UPI if an
// endpoint is configured. The amount sent is the one the dialog displays.
func (d *UPIDialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.state != Open {
		err := ErrNotOpen
		if d.state == Submitting {
			err = ErrInFlight
		}
		d.mu.Unlock()
		return err
	}

	typed := strings.TrimSpace(d.input)
	receiverHandle := strings.TrimSpace(d.trigger.ReceiverHandle)
	if receiverHandle == "" {
		receiverHandle = typed
	}
	amount := upi.StripAmount(d.amountText)

	var invalid error
	var message string
	switch {
	case !upi.IsValidHandle(receiverHandle):
		invalid, message = ErrInvalidReceiverHandle, receiverHandlePrompt
	case !upi.IsValidHandle(typed):
		invalid, message = ErrInvalidPayerHandle, payerHandlePrompt
	case !upi.IsUsableAmount(amount):
		invalid, message = ErrInvalidAmount, "Amount must be a positive number."
	}
	if invalid != nil {
		d.mu.Unlock()
		d.notifier.Notify(message)
		return invalid
	}

	t, err := d.begin()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	defer d.finish()

	link := upi.PayLink{
		Handle: receiverHandle,
		Name:   t.ReceiverName,
		Amount: amount,
		Note:   d.cfg.note,
		Ref:    d.cfg.newTxnRef(),
	}
	if d.cfg.callbackURL != "" {
		cb, err := upi.CallbackURL(d.cfg.callbackURL, upi.Callback{
			TxnID:    link.Ref,
			Receiver: t.ReceiverName,
			Amount:   amount,
		})
		if err != nil {
			d.cfg.logger.Warn("Skipping UPI callback url", "error", err)
		} else {
			link.CallbackURL = cb
		}
	}

	if err := d.navigator.Navigate(ctx, link.Build()); err != nil {
		d.cfg.logger.Error("UPI navigation failed", "payee", t.ReceiverName, "error", err)
		d.notifier.Notify(upiNavigateMessage)
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	d.cfg.logger.Info("Handed payment to UPI app", "payee", t.ReceiverName, "amount", amount, "txn_ref", link.Ref)

	if !d.recorder.Configured() {
		d.notifier.Notify(fmt.Sprintf("Opened UPI app to pay ₹%s to %s.", amount, t.ReceiverName))
		return nil
	}

	res := d.recorder.Record(ctx, models.SettlementRequest{
		Payee:   t.ReceiverName,
		Amount:  amount,
		Method:  models.MethodUPI,
		EventID: d.cfg.eventID,
		Handle:  receiverHandle,
		TxnRef:  link.Ref,
	})
	if !res.Success {
		d.cfg.logger.Warn("UPI settlement not recorded", "payee", t.ReceiverName, "error", res.Error)
		d.notifier.Notify(errorMessage(res, upiFailedMessage))
		return nil
	}

	d.updater.MarkSettled(t.ID, models.MethodUPI, amount)
	d.notifier.Notify(fmt.Sprintf("UPI payment of ₹%s to %s recorded.", amount, t.ReceiverName))
	return nil
}
