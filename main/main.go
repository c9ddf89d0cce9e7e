// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// The l1-validator-manager daemon runs an L1 validator set off-chain: it
// tracks the validator lifecycle, stake and rewards, emits warp payloads for
// relay to the P-Chain, and serves the set over JSON-RPC.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/l1-validator-manager/api"
	"github.com/ava-labs/l1-validator-manager/config"
	"github.com/ava-labs/l1-validator-manager/staking"
	"github.com/ava-labs/l1-validator-manager/state"
	"github.com/ava-labs/l1-validator-manager/validatormanager"
)

const shutdownTimeout = 10 * time.Second

// relayMessenger hands emitted warp payloads to the off-process relayer by
// logging them. A relayer tails the log (or subscribes through the manager's
// listeners when embedded) and drives signature aggregation.
type relayMessenger struct {
	log logging.Logger
}

func (m *relayMessenger) Send(payload []byte) error {
	m.log.Info("emitted warp payload",
		zap.String("payload", hex.EncodeToString(payload)),
	)
	return nil
}

func main() {
	fs := config.BuildFlagSet()
	v, err := config.BuildViper(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't configure flags: %s\n", err)
		os.Exit(1)
	}
	cfg, err := config.New(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't build config: %s\n", err)
		os.Exit(1)
	}

	logFactory := logging.NewFactory(logging.Config{
		DisplayLevel: cfg.LogLevel,
		LogLevel:     cfg.LogLevel,
	})
	defer logFactory.Close()

	log, err := logFactory.Make("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't make logger: %s\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, logFactory); err != nil {
		log.Fatal("daemon exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log logging.Logger, logFactory logging.Factory) error {
	registry := prometheus.NewRegistry()

	dbLog, err := logFactory.Make("db")
	if err != nil {
		return err
	}
	db, err := leveldb.New(cfg.DBPath, nil, dbLog, registry)
	if err != nil {
		return fmt.Errorf("couldn't open database at %q: %w", cfg.DBPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	managerState := state.New(db)
	coreLog, err := logFactory.Make("validatormanager")
	if err != nil {
		return err
	}
	core, err := validatormanager.New(
		cfg.Manager,
		coreLog,
		registry,
		managerState,
		&relayMessenger{log: coreLog},
	)
	if err != nil {
		return fmt.Errorf("couldn't create validator manager: %w", err)
	}

	stakingLog, err := logFactory.Make("staking")
	if err != nil {
		return err
	}
	stakingManager, err := staking.New(
		cfg.Staking,
		stakingLog,
		registry,
		core,
		managerState,
		staking.NewLedger(),
		staking.LinearCalculator{AnnualRateBips: cfg.RewardRateBips},
	)
	if err != nil {
		return fmt.Errorf("couldn't create staking manager: %w", err)
	}

	apiLog, err := logFactory.Make("api")
	if err != nil {
		return err
	}
	handler, err := api.NewService(apiLog, core, stakingManager)
	if err != nil {
		return fmt.Errorf("couldn't create API service: %w", err)
	}

	router := mux.NewRouter()
	router.Handle("/ext/validators", handler)
	router.Handle("/ext/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(int(cfg.HTTPPort))),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("API server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-signalChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shut down API server", zap.Error(err))
	}
	return managerState.Close()
}
