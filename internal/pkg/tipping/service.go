package tipping

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ivanacostarubio/strike-slack/app/models"
)

const failureMessage = "Sorry, I couldn't generate the invoice for your tip. Please try again in a bit."

// MappingStore resolves a Slack user to their Strike handle.
type MappingStore interface {
	GetBySlackID(slackID string) (*models.UserMapping, error)
	CreateIfAbsent(slackID, strikeHandle string) (*models.UserMapping, error)
}

// PendingTipStore keeps tip requests alive while the tipped user's Strike
// handle is being collected through the modal. Rows are keyed by the Slack
// user who clicked the shortcut, since their modal submission is the only
// event that returns.
type PendingTipStore interface {
	Upsert(slackID, targetSlackID, amount string) error
	Consume(slackID string) (*models.PendingTip, error)
}

// InvoiceAPI is the payment provider boundary: create an invoice for a
// handle, then exchange the invoice for a Lightning payment request.
type InvoiceAPI interface {
	CreateInvoice(ctx context.Context, handle, amount string) (string, error)
	CreateQuote(ctx context.Context, invoiceID string) (string, error)
}

// CodeRenderer turns a payment request string into a hosted image URL.
type CodeRenderer interface {
	RenderAndHost(ctx context.Context, payload string) (string, error)
}

// Messenger is the outbound Slack boundary.
type Messenger interface {
	SendCodeImage(ctx context.Context, slackUserID, imageURL string) error
	SendText(ctx context.Context, slackUserID, text string) error
	OpenHandlePrompt(ctx context.Context, triggerID string) error
}

// TipRequest is one tip shortcut invocation. TargetSlackID is the author of
// the message the shortcut was used on (the user being tipped);
// ClickerSlackID is the user who invoked the shortcut and therefore the one
// who will see, and submit, the handle-prompt modal.
type TipRequest struct {
	TargetSlackID  string
	ClickerSlackID string
	TriggerID      string
	Amount         string
}

// Service sequences a tip request through identity lookup, invoice creation,
// quoting, QR rendering and DM delivery. All collaborators are injected;
// nothing here reaches for ambient clients.
type Service struct {
	mappings MappingStore
	pending  PendingTipStore
	invoices InvoiceAPI
	renderer CodeRenderer
	msgr     Messenger
}

// NewService creates the tip workflow service from injected collaborators.
func NewService(mappings MappingStore, pending PendingTipStore, invoices InvoiceAPI, renderer CodeRenderer, msgr Messenger) *Service {
	return &Service{
		mappings: mappings,
		pending:  pending,
		invoices: invoices,
		renderer: renderer,
		msgr:     msgr,
	}
}

// HandleTip processes a tip shortcut. When the tipped user already has a
// stored Strike handle the delivery chain runs immediately; otherwise the
// request is parked as a pending tip keyed by the clicker and the
// handle-prompt modal opens for them.
func (s *Service) HandleTip(ctx context.Context, req TipRequest) error {
	if err := validateAmount(req.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(req.TargetSlackID) == "" {
		return errors.New("tipping: target slack user id is required")
	}
	clicker := strings.TrimSpace(req.ClickerSlackID)
	if clicker == "" {
		clicker = req.TargetSlackID
	}

	mapping, err := s.mappings.GetBySlackID(req.TargetSlackID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tipping: lookup mapping for %s: %w", req.TargetSlackID, err)
		}

		// No handle yet: park the request so the tipped user and amount
		// survive the modal round trip, then prompt the clicker.
		if err := s.pending.Upsert(clicker, req.TargetSlackID, req.Amount); err != nil {
			return fmt.Errorf("tipping: store pending tip for %s: %w", clicker, err)
		}
		if err := s.msgr.OpenHandlePrompt(ctx, req.TriggerID); err != nil {
			return fmt.Errorf("tipping: open handle prompt for %s: %w", clicker, err)
		}
		return nil
	}

	return s.deliver(ctx, req.TargetSlackID, mapping.StrikeHandle, req.Amount)
}

// HandleHandleSubmission processes the modal submission. The submitter is
// the user who clicked the shortcut, so their id keys the pending tip; the
// submitted handle belongs to the pending tip's target, and the mapping is
// stored under the target's Slack id (find-or-create, so a resubmission
// with a different handle keeps the original). A submission without a live
// tip request stores the submitter's own handle for next time.
func (s *Service) HandleHandleSubmission(ctx context.Context, slackUserID, handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return errors.New("tipping: strike handle is required")
	}

	pending, err := s.pending.Consume(slackUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tipping: consume pending tip for %s: %w", slackUserID, err)
		}

		if _, err := s.mappings.CreateIfAbsent(slackUserID, handle); err != nil {
			return fmt.Errorf("tipping: store mapping for %s: %w", slackUserID, err)
		}
		return nil
	}

	mapping, err := s.mappings.CreateIfAbsent(pending.TargetSlackID, handle)
	if err != nil {
		return fmt.Errorf("tipping: store mapping for %s: %w", pending.TargetSlackID, err)
	}

	return s.deliver(ctx, pending.TargetSlackID, mapping.StrikeHandle, pending.Amount)
}

// deliver runs invoice → quote → QR → DM in strict sequence. A failure at
// any step aborts the chain, notifies the requester and surfaces the error.
func (s *Service) deliver(ctx context.Context, slackUserID, handle, amount string) error {
	invoiceID, err := s.invoices.CreateInvoice(ctx, handle, amount)
	if err != nil {
		return s.abort(ctx, slackUserID, fmt.Errorf("tipping: create invoice for %s: %w", handle, err))
	}

	lnInvoice, err := s.invoices.CreateQuote(ctx, invoiceID)
	if err != nil {
		return s.abort(ctx, slackUserID, fmt.Errorf("tipping: quote invoice %s: %w", invoiceID, err))
	}

	imageURL, err := s.renderer.RenderAndHost(ctx, lnInvoice)
	if err != nil {
		return s.abort(ctx, slackUserID, fmt.Errorf("tipping: render code: %w", err))
	}

	if err := s.msgr.SendCodeImage(ctx, slackUserID, imageURL); err != nil {
		return s.abort(ctx, slackUserID, fmt.Errorf("tipping: deliver code to %s: %w", slackUserID, err))
	}

	return nil
}

// abort notifies the requester that the tip failed. The notification itself
// is best effort; the original error always wins.
func (s *Service) abort(ctx context.Context, slackUserID string, cause error) error {
	if err := s.msgr.SendText(ctx, slackUserID, failureMessage); err != nil {
		fiberlog.Error(fmt.Sprintf("tipping: failure notice to %s: %v", slackUserID, err))
	}

	return cause
}

func validateAmount(amount string) error {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return fmt.Errorf("tipping: invalid amount %q: %w", amount, err)
	}
	if value <= 0 {
		return fmt.Errorf("tipping: amount must be positive, got %q", amount)
	}
	return nil
}
