package slackbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/ivanacostarubio/strike-slack/internal/pkg/env"
)

// Client wraps the Slack Web API with the outbound operations the bot needs:
// DM delivery, the handle-prompt modal and the home tab.
type Client struct {
	api *slack.Client
}

// NewClientFromEnv builds a client from SLACK_BOT_TOKEN.
func NewClientFromEnv() (*Client, error) {
	token := strings.TrimSpace(env.GetEnv("SLACK_BOT_TOKEN", ""))
	if token == "" {
		return nil, errors.New("SLACK_BOT_TOKEN is not configured")
	}

	return &Client{api: slack.New(token)}, nil
}

// openDM opens (or reuses) the direct conversation with a user.
func (c *Client) openDM(ctx context.Context, slackUserID string) (string, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{slackUserID},
	})
	if err != nil {
		return "", fmt.Errorf("slackbot: open conversation with %s: %w", slackUserID, err)
	}

	return channel.ID, nil
}

// SendCodeImage DMs the user a message whose single block is the hosted QR
// code image.
func (c *Client) SendCodeImage(ctx context.Context, slackUserID, imageURL string) error {
	channelID, err := c.openDM(ctx, slackUserID)
	if err != nil {
		return err
	}

	_, _, err = c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText("⚡️ Invoice", false),
		slack.MsgOptionBlocks(
			slack.NewImageBlock(imageURL, "QR code to pay", "", nil),
		),
	)
	if err != nil {
		return fmt.Errorf("slackbot: post invoice message to %s: %w", slackUserID, err)
	}

	return nil
}

// SendText DMs the user a plain text message.
func (c *Client) SendText(ctx context.Context, slackUserID, text string) error {
	channelID, err := c.openDM(ctx, slackUserID)
	if err != nil {
		return err
	}

	if _, _, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slackbot: post message to %s: %w", slackUserID, err)
	}

	return nil
}

// OpenHandlePrompt opens the Strike-handle modal. The trigger id is only
// valid for a few seconds after the shortcut fired.
func (c *Client) OpenHandlePrompt(ctx context.Context, triggerID string) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, HandlePromptView()); err != nil {
		return fmt.Errorf("slackbot: open handle prompt: %w", err)
	}

	return nil
}

// PublishHome renders the static home tab for a user.
func (c *Client) PublishHome(ctx context.Context, slackUserID string) error {
	if _, err := c.api.PublishViewContext(ctx, slack.PublishViewContextRequest{
		UserID: slackUserID,
		View:   HomeView(slackUserID),
	}); err != nil {
		return fmt.Errorf("slackbot: publish home for %s: %w", slackUserID, err)
	}

	return nil
}
