package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/wasmhost"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bitfield",
		Usage: "generate, check and inspect packed bitfield definitions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log to stderr at debug level"},
		},
		Before: setupLogging,
		After: func(*cli.Context) error {
			_ = bitfield.Logger().Sync()
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			checkCommand(),
			inspectCommand(),
			exportsCommand(),
			runCommand(),
		},
	}
}

func setupLogging(c *cli.Context) error {
	if !c.Bool("verbose") {
		return nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	bitfield.SetLogger(log)
	wasmhost.SetLogger(log)
	return nil
}

func inFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "in",
		Usage:    "definition file (.yaml, .yml or bitfield DSL)",
		Required: true,
	}
}
