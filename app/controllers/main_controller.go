package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleHealth answers the liveness probe with a static body.
func HandleHealth(c *fiber.Ctx) error {
	return c.SendString("So a fish is swimming in water, and you ask the fish, – “Where’s the water?” and the fish says “What water?")
}
