package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/userauth/internal/client/cli"
	"github.com/dmitrijs2005/userauth/internal/client/config"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}

}
