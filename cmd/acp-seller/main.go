package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/obscura-network/acp-seller-runtime/internal/config"
	"github.com/obscura-network/acp-seller-runtime/internal/procstore"
	"github.com/obscura-network/acp-seller-runtime/internal/supervisor"
)

var rootCmd = &cobra.Command{
	Use:   "acp-seller",
	Short: "ACP seller runtime - process incoming agent commerce jobs",
	Long:  "A seller-side runtime for the agent commerce protocol: discovers incoming jobs over a push socket and pull poll, drives each through accept/deliver, and writes on-disk deliverable artifacts.",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the seller runtime",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		s := &supervisor.Supervisor{
			Config:        cfg,
			ResolveWallet: resolveWalletFromEnv,
			// RegisterOffering is left nil: no offerings ship natively
			// compiled into this binary yet, so every offering resolves
			// through a handler.wasm in its own directory.
		}

		if err := s.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("acp-seller: exited with error")
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a seller runtime is currently running",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		store, err := procstore.Open(cfg.ConfigStorePath)
		if err != nil {
			log.Fatal().Err(err).Msg("acp-seller: failed to open config store")
		}
		defer store.Close()

		if store.IsRunning() {
			fmt.Println("acp-seller: runtime is running")
		} else {
			fmt.Println("acp-seller: runtime is not running")
		}
	},
}

func resolveWalletFromEnv(ctx context.Context) (string, error) {
	addr := os.Getenv("ACP_WALLET_ADDRESS")
	if addr == "" {
		return "", fmt.Errorf("ACP_WALLET_ADDRESS is not set")
	}
	return addr, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.AddCommand(startCmd, statusCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
