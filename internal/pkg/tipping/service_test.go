package tipping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ivanacostarubio/strike-slack/app/models"
)

type invoiceCall struct {
	handle string
	amount string
}

type fakeMappings struct {
	byID map[string]*models.UserMapping
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{byID: map[string]*models.UserMapping{}}
}

func (f *fakeMappings) GetBySlackID(slackID string) (*models.UserMapping, error) {
	if m, ok := f.byID[slackID]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMappings) CreateIfAbsent(slackID, strikeHandle string) (*models.UserMapping, error) {
	if m, ok := f.byID[slackID]; ok {
		return m, nil
	}
	m := &models.UserMapping{SlackID: slackID, StrikeHandle: strikeHandle}
	f.byID[slackID] = m
	return m, nil
}

type fakePending struct {
	byID map[string]*models.PendingTip
}

func newFakePending() *fakePending {
	return &fakePending{byID: map[string]*models.PendingTip{}}
}

func (f *fakePending) Upsert(slackID, targetSlackID, amount string) error {
	f.byID[slackID] = &models.PendingTip{SlackID: slackID, TargetSlackID: targetSlackID, Amount: amount}
	return nil
}

func (f *fakePending) Consume(slackID string) (*models.PendingTip, error) {
	pending, ok := f.byID[slackID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	delete(f.byID, slackID)
	return pending, nil
}

type fakeInvoiceAPI struct {
	invoiceCalls []invoiceCall
	quoteCalls   []string
	invoiceID    string
	lnInvoice    string
	invoiceErr   error
	quoteErr     error
}

func (f *fakeInvoiceAPI) CreateInvoice(_ context.Context, handle, amount string) (string, error) {
	f.invoiceCalls = append(f.invoiceCalls, invoiceCall{handle: handle, amount: amount})
	if f.invoiceErr != nil {
		return "", f.invoiceErr
	}
	return f.invoiceID, nil
}

func (f *fakeInvoiceAPI) CreateQuote(_ context.Context, invoiceID string) (string, error) {
	f.quoteCalls = append(f.quoteCalls, invoiceID)
	if f.quoteErr != nil {
		return "", f.quoteErr
	}
	return f.lnInvoice, nil
}

type fakeRenderer struct {
	calls []string
	url   string
	err   error
}

func (f *fakeRenderer) RenderAndHost(_ context.Context, payload string) (string, error) {
	f.calls = append(f.calls, payload)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type sentImage struct {
	user string
	url  string
}

type sentText struct {
	user string
	text string
}

type fakeMessenger struct {
	images  []sentImage
	texts   []sentText
	prompts []string
}

func (f *fakeMessenger) SendCodeImage(_ context.Context, slackUserID, imageURL string) error {
	f.images = append(f.images, sentImage{user: slackUserID, url: imageURL})
	return nil
}

func (f *fakeMessenger) SendText(_ context.Context, slackUserID, text string) error {
	f.texts = append(f.texts, sentText{user: slackUserID, text: text})
	return nil
}

func (f *fakeMessenger) OpenHandlePrompt(_ context.Context, triggerID string) error {
	f.prompts = append(f.prompts, triggerID)
	return nil
}

type fixture struct {
	mappings *fakeMappings
	pending  *fakePending
	invoices *fakeInvoiceAPI
	renderer *fakeRenderer
	msgr     *fakeMessenger
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		mappings: newFakeMappings(),
		pending:  newFakePending(),
		invoices: &fakeInvoiceAPI{invoiceID: "INV1", lnInvoice: "lnbc1..."},
		renderer: &fakeRenderer{url: "https://imghost/xyz.png"},
		msgr:     &fakeMessenger{},
	}
	f.svc = NewService(f.mappings, f.pending, f.invoices, f.renderer, f.msgr)
	return f
}

func TestHandleTip_KnownHandle_DeliversInvoice(t *testing.T) {
	f := newFixture()
	f.mappings.byID["U1"] = &models.UserMapping{SlackID: "U1", StrikeHandle: "alice"}

	err := f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U1", ClickerSlackID: "U1", TriggerID: "tr1", Amount: "10"})
	require.NoError(t, err)

	require.Len(t, f.invoices.invoiceCalls, 1)
	assert.Equal(t, invoiceCall{handle: "alice", amount: "10"}, f.invoices.invoiceCalls[0])
	assert.Equal(t, []string{"INV1"}, f.invoices.quoteCalls)
	assert.Equal(t, []string{"lnbc1..."}, f.renderer.calls)

	require.Len(t, f.msgr.images, 1)
	assert.Equal(t, sentImage{user: "U1", url: "https://imghost/xyz.png"}, f.msgr.images[0])
	assert.Empty(t, f.msgr.prompts)
}

func TestHandleTip_UnknownUser_OpensPromptWithoutInvoice(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U2", ClickerSlackID: "U1", TriggerID: "tr2", Amount: "100"})
	require.NoError(t, err)

	assert.Empty(t, f.invoices.invoiceCalls)
	assert.Equal(t, []string{"tr2"}, f.msgr.prompts)

	// The pending tip is keyed by the clicker, who the modal opens for,
	// and remembers who is being tipped.
	pending := f.pending.byID["U1"]
	require.NotNil(t, pending)
	assert.Equal(t, "U2", pending.TargetSlackID)
	assert.Equal(t, "100", pending.Amount)
}

func TestHandleTip_InvalidAmount(t *testing.T) {
	f := newFixture()

	for _, amount := range []string{"", "abc", "0", "-5"} {
		err := f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U1", Amount: amount})
		assert.Error(t, err, "amount %q", amount)
	}
	assert.Empty(t, f.invoices.invoiceCalls)
}

func TestHandleHandleSubmission_ResumesPendingTip(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U3", ClickerSlackID: "U3", TriggerID: "tr3", Amount: "1"}))
	require.Empty(t, f.invoices.invoiceCalls)

	err := f.svc.HandleHandleSubmission(context.Background(), "U3", "bob")
	require.NoError(t, err)

	require.Len(t, f.invoices.invoiceCalls, 1)
	assert.Equal(t, invoiceCall{handle: "bob", amount: "1"}, f.invoices.invoiceCalls[0])
	require.Len(t, f.msgr.images, 1)
	assert.Equal(t, "U3", f.msgr.images[0].user)

	// The pending tip was consumed; nothing left to resume.
	_, err = f.pending.Consume("U3")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHandleHandleSubmission_DeliversToTippedUserNotClicker(t *testing.T) {
	f := newFixture()

	// U1 tips U7's message; U7 has no stored handle, so the modal opens
	// for U1 and the submission arrives under U1's id.
	require.NoError(t, f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U7", ClickerSlackID: "U1", TriggerID: "tr7", Amount: "10"}))
	require.Equal(t, []string{"tr7"}, f.msgr.prompts)
	require.Empty(t, f.invoices.invoiceCalls)

	err := f.svc.HandleHandleSubmission(context.Background(), "U1", "bob")
	require.NoError(t, err)

	// The handle and the delivery belong to the tipped user.
	require.Len(t, f.invoices.invoiceCalls, 1)
	assert.Equal(t, invoiceCall{handle: "bob", amount: "10"}, f.invoices.invoiceCalls[0])
	require.Len(t, f.msgr.images, 1)
	assert.Equal(t, "U7", f.msgr.images[0].user)

	m, err := f.mappings.GetBySlackID("U7")
	require.NoError(t, err)
	assert.Equal(t, "bob", m.StrikeHandle)

	// The clicker's own identity mapping is untouched.
	_, err = f.mappings.GetBySlackID("U1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHandleHandleSubmission_NoPending_StoresMappingOnly(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleHandleSubmission(context.Background(), "U4", "carol")
	require.NoError(t, err)

	assert.Empty(t, f.invoices.invoiceCalls)
	assert.Empty(t, f.msgr.images)
	m, err := f.mappings.GetBySlackID("U4")
	require.NoError(t, err)
	assert.Equal(t, "carol", m.StrikeHandle)
}

func TestHandleHandleSubmission_ResubmissionKeepsOriginalHandle(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.svc.HandleHandleSubmission(context.Background(), "U5", "bob"))

	// A later submission with a different handle is silently ignored; the
	// resumed tip uses the stored handle.
	require.NoError(t, f.pending.Upsert("U5", "U5", "10"))
	require.NoError(t, f.svc.HandleHandleSubmission(context.Background(), "U5", "mallory"))

	m, err := f.mappings.GetBySlackID("U5")
	require.NoError(t, err)
	assert.Equal(t, "bob", m.StrikeHandle)

	require.Len(t, f.invoices.invoiceCalls, 1)
	assert.Equal(t, "bob", f.invoices.invoiceCalls[0].handle)
}

func TestHandleTip_InvoiceFailure_AbortsAndNotifies(t *testing.T) {
	f := newFixture()
	f.mappings.byID["U1"] = &models.UserMapping{SlackID: "U1", StrikeHandle: "alice"}
	f.invoices.invoiceErr = errors.New("provider down")

	err := f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U1", Amount: "10"})
	require.Error(t, err)

	// The chain short-circuits after the failed step.
	assert.Empty(t, f.invoices.quoteCalls)
	assert.Empty(t, f.renderer.calls)
	assert.Empty(t, f.msgr.images)

	// The requester hears about the failure instead of silence.
	require.Len(t, f.msgr.texts, 1)
	assert.Equal(t, "U1", f.msgr.texts[0].user)
}

func TestHandleTip_QuoteFailure_ShortCircuitsRender(t *testing.T) {
	f := newFixture()
	f.mappings.byID["U1"] = &models.UserMapping{SlackID: "U1", StrikeHandle: "alice"}
	f.invoices.quoteErr = errors.New("invoice expired")

	err := f.svc.HandleTip(context.Background(), TipRequest{TargetSlackID: "U1", Amount: "10"})
	require.Error(t, err)

	assert.Len(t, f.invoices.invoiceCalls, 1)
	assert.Empty(t, f.renderer.calls)
	assert.Empty(t, f.msgr.images)
	assert.Len(t, f.msgr.texts, 1)
}
