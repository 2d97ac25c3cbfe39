package middleware

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/slack-go/slack"
)

// SlackVerify checks the Slack request signature (X-Slack-Signature +
// X-Slack-Request-Timestamp over the raw body) before any Slack handler
// runs. Requests that fail verification are rejected with 401.
func SlackVerify(signingSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := http.Header{}
		for key, values := range c.GetReqHeaders() {
			for _, value := range values {
				header.Add(key, value)
			}
		}

		verifier, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			fiberlog.Error(fmt.Sprintf("[SlackVerify] bad signature headers: %v", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}

		if _, err := verifier.Write(c.Body()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "verification failed"})
		}

		if err := verifier.Ensure(); err != nil {
			fiberlog.Error(fmt.Sprintf("[SlackVerify] signature mismatch: %v", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid signature"})
		}

		return c.Next()
	}
}
