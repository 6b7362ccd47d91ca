// Command triage-lambda serves the triage API from AWS Lambda.
//
// Configuration comes from TRIAGE_* environment variables (and an optional
// triage.yaml bundled next to the binary). Set TRIAGE_REDIS_ADDR so guided
// sessions survive across invocations.
package main

import (
	"log/slog"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
	"github.com/aretw0/triage/pkg/adapters/lambda"
)

func main() {
	cfg, err := config.Load(os.Getenv("TRIAGE_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Redis.Addr == "" {
		app.Logger.Warn("no redis configured, guided sessions are local to each instance")
	}

	h := lambda.NewHandler(app.Sessions,
		lambda.WithDirectory(app.Directory),
		lambda.WithFallbackDoctors(app.Fallback),
		lambda.WithMaxInputSize(cfg.Input.MaxSize),
		lambda.WithLogger(app.Logger),
	)
	awslambda.Start(h.Handle)
}
