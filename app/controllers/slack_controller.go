package controllers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/ivanacostarubio/strike-slack/internal/pkg/slackbot"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/tipping"
)

// shortcutAmounts maps the message shortcut callback ids to their fixed USD
// tip amounts.
var shortcutAmounts = map[string]string{
	"tip1":   "1",
	"tip10":  "10",
	"tip100": "100",
}

// HomePublisher renders the static home tab for a user.
type HomePublisher interface {
	PublishHome(ctx context.Context, slackUserID string) error
}

// SlackController terminates the inbound Slack surfaces: slash command,
// message shortcuts, modal submission and the events API.
type SlackController struct {
	svc  *tipping.Service
	home HomePublisher
}

// NewSlackController wires the controller with its collaborators.
func NewSlackController(svc *tipping.Service, home HomePublisher) *SlackController {
	return &SlackController{svc: svc, home: home}
}

// HandleSlashCommand answers /tip. The shortcut-driven flow is the canonical
// one; the slash command only points users at it.
func (ctrl *SlackController) HandleSlashCommand(c *fiber.Ctx) error {
	if c.FormValue("command") != "/tip" {
		return c.SendStatus(fiber.StatusOK)
	}

	return c.JSON(fiber.Map{
		"response_type": "ephemeral",
		"text":          "To send a tip, use the *Tip $1*, *Tip $10* or *Tip $100* message shortcuts on the message of the person you want to tip.",
	})
}

// HandleInteraction dispatches message shortcuts and the handle-prompt modal
// submission. Slack expects an acknowledgement within seconds, so failures
// are logged and reported to the requester via DM by the service rather than
// bounced back on this response.
func (ctrl *SlackController) HandleInteraction(c *fiber.Ctx) error {
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(c.FormValue("payload")), &callback); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	switch callback.Type {
	case slack.InteractionTypeMessageAction:
		return ctrl.handleTipShortcut(c, callback)
	case slack.InteractionTypeViewSubmission:
		return ctrl.handleViewSubmission(c, callback)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (ctrl *SlackController) handleTipShortcut(c *fiber.Ctx, callback slack.InteractionCallback) error {
	amount, ok := shortcutAmounts[callback.CallbackID]
	if !ok {
		return c.SendStatus(fiber.StatusOK)
	}

	// The tip targets the author of the message the shortcut was used on;
	// the clicker is who the modal opens for when a handle is missing.
	targetID := callback.Message.User
	if targetID == "" {
		targetID = callback.User.ID
	}

	err := ctrl.svc.HandleTip(c.Context(), tipping.TipRequest{
		TargetSlackID:  targetID,
		ClickerSlackID: callback.User.ID,
		TriggerID:      callback.TriggerID,
		Amount:         amount,
	})
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Slack] tip shortcut %s: %v", callback.CallbackID, err))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (ctrl *SlackController) handleViewSubmission(c *fiber.Ctx, callback slack.InteractionCallback) error {
	if callback.View.CallbackID != slackbot.HandlePromptCallbackID {
		return c.SendStatus(fiber.StatusOK)
	}

	handle := ""
	if callback.View.State != nil {
		handle = callback.View.State.Values[slackbot.HandleInputBlockID][slackbot.HandleInputActionID].Value
	}

	if err := ctrl.svc.HandleHandleSubmission(c.Context(), callback.User.ID, handle); err != nil {
		fiberlog.Error(fmt.Sprintf("[Slack] handle submission: %v", err))
	}

	// Empty 200 closes the modal.
	return c.SendStatus(fiber.StatusOK)
}

// HandleEvent terminates the Events API: the URL verification handshake and
// the home tab render.
func (ctrl *SlackController) HandleEvent(c *fiber.Ctx) error {
	event, err := slackevents.ParseEvent(json.RawMessage(c.Body()), slackevents.OptionNoVerifyToken())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event"})
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(c.Body(), &challenge); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge"})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
		return c.SendString(challenge.Challenge)

	case slackevents.CallbackEvent:
		if home, ok := event.InnerEvent.Data.(*slackevents.AppHomeOpenedEvent); ok {
			if err := ctrl.home.PublishHome(c.Context(), home.User); err != nil {
				fiberlog.Error(fmt.Sprintf("[Slack] publish home: %v", err))
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
