package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gardener/novactl/pkg/auth"
	"github.com/gardener/novactl/pkg/core/config"
	"github.com/gardener/novactl/pkg/metrics"
	slogutils "github.com/gardener/novactl/pkg/utils/slog"
	"github.com/gardener/novactl/pkg/version"
)

func main() {
	app := &cli.App{
		Name:                 "novactl",
		Version:              version.Version,
		EnableBashCompletion: true,
		Usage:                "command-line client for the OpenStack compute service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "os-auth-url",
				Usage:   "identity endpoint to authenticate against",
				EnvVars: []string{auth.EnvAuthURL},
			},
			&cli.StringFlag{
				Name:    "os-username",
				Usage:   "name of the user to authenticate as",
				EnvVars: []string{auth.EnvUsername},
			},
			&cli.StringFlag{
				Name:    "os-password",
				Usage:   "password of the user",
				EnvVars: []string{auth.EnvPassword},
			},
			&cli.StringFlag{
				Name:    "os-tenant-name",
				Usage:   "name of the project to scope the token to",
				Aliases: []string{"os-project-name"},
				EnvVars: []string{auth.EnvTenantName, auth.EnvProjectName},
			},
			&cli.StringFlag{
				Name:    "os-region-name",
				Usage:   "region to select service endpoints from",
				EnvVars: []string{auth.EnvRegionName},
			},
			&cli.StringFlag{
				Name:    "os-compute-api-version",
				Usage:   "compute API version to request, e.g. 2.1 or 2.latest",
				EnvVars: []string{auth.EnvComputeAPIVersion},
			},
			&cli.StringFlag{
				Name:    "os-cloud",
				Usage:   "name of a cloud from the clouds config file",
				EnvVars: []string{auth.EnvCloud},
			},
			&cli.StringFlag{
				Name:    "os-config-file",
				Usage:   "path to the clouds config file",
				EnvVars: []string{auth.EnvConfigFile},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enables debug mode, if set",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "timings",
				Usage: "print a summary of API call timings, if set",
				Value: false,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout for a single API request",
				Value: 60 * time.Second,
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "number of times to retry transiently failed requests",
				Value: 0,
			},
		},
		Before: func(ctx *cli.Context) error {
			logConf := config.LoggingConfig{
				Level:  string(slogutils.LevelInfo),
				Format: string(slogutils.FormatText),
			}
			if ctx.Bool("debug") {
				logConf.Level = string(slogutils.LevelDebug)
			}

			logger, err := slogutils.NewFromConfig(os.Stderr, logConf)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx.Context = context.WithValue(ctx.Context, timingsKey{}, metrics.NewTimingsRecorder())
			return nil
		},
		After: func(ctx *cli.Context) error {
			if ctx.Bool("timings") {
				renderTimings(getTimingsRecorder(ctx))
			}
			return nil
		},
		Commands: []*cli.Command{
			NewServerCommand(),
			NewFlavorCommand(),
			NewKeyPairCommand(),
			NewImageCommand(),
			NewNetworkCommand(),
			NewCatalogCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
