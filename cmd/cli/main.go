package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/topoconst/internal/app"
	"github.com/vk/topoconst/internal/cli"
)

func main() {
	cfg, exitCleanly, err := cli.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitErr, ok := err.(*cli.ExitError); ok {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
	if exitCleanly {
		return
	}

	a, err := app.NewApp(os.Stdout, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
