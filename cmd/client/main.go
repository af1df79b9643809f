package main

import (
	"context"
	"log"

	"github.com/whispervault/whispervault/internal/client/cli"
	"github.com/whispervault/whispervault/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
