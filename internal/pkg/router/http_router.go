package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ivanacostarubio/strike-slack/app/controllers"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/middleware"
)

// HttpRouter installs the liveness probe and the signature-verified Slack
// endpoints.
type HttpRouter struct {
	slack         *controllers.SlackController
	signingSecret string
}

func NewHttpRouter(slack *controllers.SlackController, signingSecret string) *HttpRouter {
	return &HttpRouter{slack: slack, signingSecret: signingSecret}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", controllers.HandleHealth)

	grp := app.Group("/slack", middleware.SlackVerify(h.signingSecret))
	grp.Post("/commands", h.slack.HandleSlashCommand)
	grp.Post("/interactions", h.slack.HandleInteraction)
	grp.Post("/events", h.slack.HandleEvent)
}
