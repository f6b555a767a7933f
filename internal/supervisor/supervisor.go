// Package supervisor owns the process lifetime: PID guard, signal
// handling, wallet resolution, and starting the socket listener and
// poll reconciler concurrently.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/alert"
	"github.com/obscura-network/acp-seller-runtime/internal/config"
	"github.com/obscura-network/acp-seller-runtime/internal/debugapi"
	"github.com/obscura-network/acp-seller-runtime/internal/delivery"
	"github.com/obscura-network/acp-seller-runtime/internal/dispatcher"
	"github.com/obscura-network/acp-seller-runtime/internal/ledger"
	"github.com/obscura-network/acp-seller-runtime/internal/normalize"
	"github.com/obscura-network/acp-seller-runtime/internal/poll"
	"github.com/obscura-network/acp-seller-runtime/internal/procstore"
	"github.com/obscura-network/acp-seller-runtime/internal/registry"
	"github.com/obscura-network/acp-seller-runtime/internal/selleradapter"
	"github.com/obscura-network/acp-seller-runtime/internal/socket"
	"github.com/obscura-network/acp-seller-runtime/internal/stage"
)

// WalletResolver resolves the agent's own wallet address. In
// production this is backed by an external agent-info collaborator;
// the CLI's start command supplies one that reads ACP_WALLET_ADDRESS,
// and tests supply a static resolver.
type WalletResolver func(ctx context.Context) (string, error)

// Supervisor drives the full runtime: PID guard, event producers, and
// the loopback debug API, until a termination signal arrives.
type Supervisor struct {
	Config           config.Config
	ResolveWallet    WalletResolver
	RegisterOffering func(reg *registry.Registry)
}

// Run acquires the PID guard, resolves the wallet, wires the
// dispatcher, and starts the socket listener, poll reconciler, and
// debug API concurrently. It blocks until SIGINT/SIGTERM or until ctx
// is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	store, err := procstore.Open(s.Config.ConfigStorePath)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	defer store.Close()

	if err := store.AcquirePID(os.Getpid()); err != nil {
		return err
	}
	defer func() {
		if err := store.ReleasePID(); err != nil {
			log.Error().Err(err).Msg("supervisor: failed to release pid file")
		}
	}()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wallet, err := s.ResolveWallet(runCtx)
	if err != nil {
		return fmt.Errorf("resolve wallet address: %w", err)
	}
	walletLc := normalizeWallet(wallet)
	log.Info().Str("wallet", walletLc).Msg("supervisor: resolved agent wallet")

	deliveryRoot := s.Config.DeliveryRoot
	if deliveryRoot == "" {
		deliveryRoot = delivery.ResolveDeliveryRoot()
	}

	reg := registry.New(s.Config.OfferingsRoot)
	if s.RegisterOffering != nil {
		s.RegisterOffering(reg)
	}

	seller := selleradapter.New(s.Config.ACPURL, s.Config.APIKey)
	l := ledger.New()
	executor := stage.New(reg, seller, l, deliveryRoot)
	dispatch := dispatcher.New(l, executor)

	notifier := alert.New(s.Config.PagerDutyRouting)
	sock := socket.New(s.Config.WebSocketURL, walletLc, dispatch.HandleJobAdapter(walletLc), notifier)

	debugSrv := debugapi.New(s.Config.DebugAPIAddr, l)
	go func() {
		if err := debugSrv.ListenAndServe(); err != nil {
			log.Warn().Err(err).Msg("supervisor: debug API server stopped")
		}
	}()

	go sock.Run(runCtx)

	if s.Config.PollEnabled {
		reconciler := poll.New(seller, dispatch.HandleJobAdapter(walletLc), poll.Options{
			Interval:   s.Config.PollInterval,
			PageSize:   s.Config.PollPageSize,
			MyWalletLc: walletLc,
		})
		go reconciler.Run(runCtx)
	} else {
		log.Info().Msg("supervisor: polling disabled by configuration")
	}

	<-runCtx.Done()
	log.Info().Msg("supervisor: termination signal received, shutting down")
	return nil
}

func normalizeWallet(addr string) string {
	normalized, ok := normalize.NormalizeAddress(addr)
	if !ok {
		return addr
	}
	return normalized
}
