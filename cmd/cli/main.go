package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/akovardin/securepass/internal/cli"
	"github.com/akovardin/securepass/internal/config"
	"github.com/akovardin/securepass/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	log := logging.NewDefault()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "securepass: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx, bufio.NewScanner(os.Stdin))
}
