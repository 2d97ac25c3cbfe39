package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ivanacostarubio/strike-slack/app/controllers"
	"github.com/ivanacostarubio/strike-slack/app/repository"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/database"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/env"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/imgur"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/qrimage"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/router"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/slackbot"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/strike"
	"github.com/ivanacostarubio/strike-slack/internal/pkg/tipping"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "3000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	db := database.SetupDatabase()
	repos := repository.NewRepositories(db)

	if total, err := repos.UserMapping.Count(); err != nil {
		log.Printf("[APP] counting linked Strike handles failed: %v", err)
	} else {
		log.Printf("[APP] linked Strike handles: %d", total)
	}

	strikeClient, err := strike.NewClientFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	imgurClient, err := imgur.NewClientFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	bot, err := slackbot.NewClientFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	renderer := qrimage.NewRenderer(imgurClient)
	svc := tipping.NewService(repos.UserMapping, repos.PendingTip, strikeClient, renderer, bot)
	slackCtrl := controllers.NewSlackController(svc, bot)

	app := fiber.New()
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app, router.NewHttpRouter(slackCtrl, env.GetEnv("SLACK_SIGNING_SECRET", "")))

	return app
}
