package main

import (
	"encoding/json"
	"fmt"
	"os"

	"polyfeed/internal/realtime"

	"github.com/spf13/cobra"
)

var userMarkets []string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Stream the authenticated user's order and trade events",
	RunE:  runUser,
}

func init() {
	userCmd.Flags().StringSliceVar(&userMarkets, "markets", nil, "condition ids to watch")
}

func runUser(cmd *cobra.Command, _ []string) error {
	cfg, err := readConfig(configPath)
	if err != nil {
		return fmt.Errorf("couldn't read config: %w", err)
	}
	if !cfg.Realtime.Auth.IsSet() {
		return fmt.Errorf("realtime.auth credentials are required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	enc := json.NewEncoder(os.Stdout)

	channel := realtime.NewUserChannel(realtime.Config{
		URL:          cfg.Realtime.URL,
		PingInterval: cfg.Realtime.PingInterval.Duration(),
		Logger:       logger,
		OnMessage: func(msg *realtime.Message) {
			if err := enc.Encode(msg); err != nil {
				logger.Warn("couldn't encode message", "error", err)
			}
		},
		OnError: func(err error) {
			logger.Warn("user channel error", "error", err)
		},
		OnClose: func(code int) {
			logger.Warn("user channel closed", "code", code)
		},
	}, realtime.Creds{
		Key:        cfg.Realtime.Auth.Key,
		Secret:     cfg.Realtime.Auth.Secret,
		Passphrase: cfg.Realtime.Auth.Passphrase,
	})

	if err := channel.Connect(ctx, userMarkets, false); err != nil {
		return fmt.Errorf("couldn't connect user channel: %w", err)
	}
	defer channel.Disconnect()

	<-ctx.Done()
	return nil
}
