package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg := hwpxfill.ConfigFromEnvironment()
	if cmd.Bool("strict") {
		cfg.StrictMode = true
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if path := cmd.String("schema"); path != "" {
		cfg.SchemaPath = path
	}
	hwpxfill.SetGlobalConfig(cfg)
	hwpxfill.UpdateLoggerFromConfig()

	result, err := hwpxfill.Generate(hwpxfill.GenerateOptions{
		TemplatePath: cmd.String("template"),
		OutputPath:   cmd.String("output"),
		DataPath:     cmd.String("data-json"),
		Config:       cfg,
	})
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	fmt.Printf("wrote %s\n", result.OutputPath)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "hwpxfill",
		Usage:  "Fill an NRF research proposal HWPX template from a JSON payload",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "template",
				Aliases:  []string{"t"},
				Usage:    "Path to the anchored HWPX template",
				Required: true,
				Sources:  cli.EnvVars("HWPXFILL_TEMPLATE"),
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the generated HWPX package",
				Required: true,
				Sources:  cli.EnvVars("HWPXFILL_OUTPUT"),
			},
			&cli.StringFlag{
				Name:     "data-json",
				Aliases:  []string{"d"},
				Usage:    "Path to the JSON content payload",
				Required: true,
				Sources:  cli.EnvVars("HWPXFILL_DATA"),
			},
			&cli.StringFlag{
				Name:    "schema",
				Usage:   "Path to a YAML anchor schema overriding the built-in one",
				Sources: cli.EnvVars("HWPXFILL_SCHEMA"),
			},
			&cli.BoolFlag{
				Name:    "strict",
				Usage:   "Fail on unknown anchors and unfilled placeholders",
				Sources: cli.EnvVars("HWPXFILL_STRICT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log verbosity (debug, info, warn, error, off)",
				Sources: cli.EnvVars("HWPXFILL_LOG_LEVEL"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
