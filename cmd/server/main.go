package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reshetovitsme/mattermost-rss-feed/internal/di"
	feedService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/feed/service"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	httpServer "github.com/reshetovitsme/mattermost-rss-feed/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "mattermost-rss",
		Usage: "Serve a Mattermost news channel as an RSS feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML, JSON or TOML config file (default: ./config.{yaml,yml,json,toml})",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			{
				Name:  "feed",
				Usage: "Render the RSS feed once and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the feed to this file instead of stdout",
					},
				},
				Action: exportFeed,
			},
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	injector, cfg, err := bootstrap(cmd, os.Stdout)
	if err != nil {
		return err
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		slog.Warn("Missing environment variables", "variables", strings.Join(missing, ", "))
		slog.Warn("Please check your .env file configuration")
	}
	if !cfg.HasChannel() {
		slog.Warn("No news channel specified", "hint", "set MATTERMOST_NEWS_CHANNEL or MATTERMOST_NEWS_CHANNEL_ID")
	}

	server := do.MustInvoke[*httpServer.Server](injector)

	slog.Info("Application started",
		"port", cfg.HTTPPort,
		"rss", cfg.BaseURL+"/rss",
		"health", cfg.BaseURL+"/health",
		"channel", cfg.NewsChannelName,
	)
	slog.Info("Press Ctrl+C to stop")

	if err := server.Start(ctx); err != nil {
		return oops.With("context", "running HTTP server").Wrap(err)
	}

	slog.Info("Shutting down...")
	return nil
}

func exportFeed(ctx context.Context, cmd *cli.Command) error {
	// Logs go to stderr so the feed can be piped from stdout
	injector, _, err := bootstrap(cmd, os.Stderr)
	if err != nil {
		return err
	}

	feeds := do.MustInvoke[*feedService.Service](injector)
	rss, err := feeds.GenerateRSS(ctx)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		_, err := fmt.Fprintln(os.Stdout, rss)
		return err
	}

	if err := os.WriteFile(output, []byte(rss), 0644); err != nil {
		return oops.With("output", output).Wrap(err)
	}
	slog.Info("Feed written", "output", output)
	return nil
}

// bootstrap loads configuration, installs the logger and builds the container
func bootstrap(cmd *cli.Command, logOut io.Writer) (do.Injector, *config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, oops.With("context", "failed to load config").Wrap(err)
	}

	setupLogging(logOut, cfg.SlogLevel())

	injector, err := di.Setup(cfg)
	if err != nil {
		return nil, nil, oops.With("context", "failed to setup dependency injection").Wrap(err)
	}
	return injector, cfg, nil
}

// setupLogging sends text logs to out and errors as JSON to stderr
func setupLogging(out io.Writer, level slog.Level) {
	textHandler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	slog.SetDefault(slog.New(slogmulti.Fanout(textHandler, jsonHandler)))
}
