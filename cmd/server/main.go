package main

import (
	"context"
	"log"

	"github.com/whispervault/whispervault/internal/server"
	"github.com/whispervault/whispervault/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
