package main

import (
	"log"

	"ngsrerun/app"
	"ngsrerun/internal/config"
	"ngsrerun/internal/session"
	"ngsrerun/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	store, err := session.NewStore(cfg.Paths.WorkDir)
	if err != nil {
		log.Fatal("failed to initialize work directory: ", err)
	}

	svc := app.NewRerunService(store, cfg.Plate)

	uiApp, err := ui.NewApp(cfg, svc)
	if err != nil {
		log.Fatal("failed to create UI app: ", err)
	}

	log.Printf("Starting rerun manifest generator on http://localhost:%s", cfg.Server.Port)
	log.Fatal(uiApp.Start())
}
