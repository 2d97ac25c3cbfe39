package slackbot

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Identifiers of the handle-prompt modal. The interaction controller matches
// submissions on these.
const (
	HandlePromptCallbackID = "handlePrompt"
	HandleInputBlockID     = "input_c"
	HandleInputActionID    = "strikeHandle"
)

// HandlePromptView builds the modal that asks a user for their Strike handle.
func HandlePromptView() slack.ModalViewRequest {
	intro := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, "Somebody is trying to send you money using Strike.", false, false),
		nil, nil,
	)

	input := slack.NewInputBlock(
		HandleInputBlockID,
		slack.NewTextBlockObject(slack.PlainTextType, "What is your strike handle?", false, false),
		nil,
		slack.NewPlainTextInputBlockElement(nil, HandleInputActionID),
	)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: HandlePromptCallbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, "I need some info", false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Close:      slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{intro, input},
		},
	}
}

// HomeView builds the static home tab shown on app_home_opened.
func HomeView(slackUserID string) slack.HomeTabViewRequest {
	greeting := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Hello <@%s>* :crown:", slackUserID), false, false),
		nil, nil,
	)
	about := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, "I'm a Slack bot that uses Strike's API to send tips between users.", false, false),
		nil, nil,
	)

	return slack.HomeTabViewRequest{
		Type: slack.VTHomeTab,
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{greeting, about},
		},
	}
}
