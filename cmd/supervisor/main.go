package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"scuttle/internal/config"
	"scuttle/internal/supervisor"
)

func main() {
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(jsonHandler))

	godotenv.Load(config.EnvFile)

	cmd := &cli.Command{
		Name:  "scuttle-supervisor",
		Usage: "Keep the audio server and its public tunnel alive",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "setup",
				Usage: "Download the tunnel binary into tools/ and record its path",
			},
			&cli.StringFlag{
				Name:  "set-webhook",
				Usage: "Persist the status webhook URL and exit",
			},
			&cli.IntFlag{
				Name:  "control-port",
				Usage: "Local TCP port accepting a STOP command",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Debug-level logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("Supervisor failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if cmd.Bool("setup") {
		if err := supervisor.Setup(); err != nil {
			return err
		}
		slog.Info("Setup complete, run the supervisor again to start serving")
		return nil
	}

	if url := cmd.String("set-webhook"); url != "" {
		if err := supervisor.UpdateEnv("DISCORD_WEBHOOK_URL", url); err != nil {
			return err
		}
		slog.Info("Webhook URL saved")
		return nil
	}

	notifier := supervisor.NewNotifier(os.Getenv("DISCORD_WEBHOOK_URL"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()

	if port := cmd.Int("control-port"); port != 0 {
		control, err := supervisor.ListenControl(int(port))
		if err != nil {
			return err
		}
		defer control.Close()
		go func() {
			<-control.Stop
			slog.Info("Stop command received on control port")
			cancel()
		}()
	}

	inhibitor := supervisor.PreventSleep()
	defer supervisor.AllowSleep(inhibitor)

	tunnelBin := os.Getenv("TUNNEL_BIN_PATH")
	if tunnelBin == "" {
		tunnelBin = config.TunnelBin
	}

	sup := supervisor.New(config.ServerBin, tunnelBin, notifier)
	if err := sup.Run(runCtx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
