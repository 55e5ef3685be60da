package main

import (
	"log"
	"os"

	"appfactory/pkg/apps"
	"appfactory/pkg/chat"
	"appfactory/pkg/config"
	"appfactory/pkg/factory"
	"appfactory/pkg/runner"
	"appfactory/pkg/system"
	"appfactory/pkg/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	store := config.NewStore(config.DefaultPath)
	settings, err := config.Open(store)
	if err != nil {
		log.Fatal(err)
	}
	repo, err := apps.Open(config.DefaultAppsDir)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(config.DefaultLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	client := chat.New(settings.Current().APIKey, chat.EndpointFromEnv())
	settings.Subscribe(func(c config.Config) {
		client.UpdateKey(c.APIKey)
	})
	log.Printf("starting: config=%s apps=%s model=%s configured=%t",
		store.Path(), repo.Root(), client.Model(), client.Configured())

	ctrl := factory.New(factory.Deps{
		Settings: settings,
		LLM:      client,
		Apps:     repo,
		Runner:   runner.New(),
	})

	app := ui.New(ctrl, settings, system.New(client.Model()))
	if err := app.Run(); err != nil {
		log.Printf("ui: %v", err)
		logFile.Close()
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
