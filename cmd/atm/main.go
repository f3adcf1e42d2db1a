package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Evgen-Mutagen/atm-inventory/internal/atm"
	"github.com/Evgen-Mutagen/atm-inventory/internal/util/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := atm.NewConfigFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.LogLevel, "stderr"); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	ledger, err := atm.NewLedger(cfg.Balance())
	if err != nil {
		logger.Log.Fatal("Failed to create ledger", zap.Error(err))
	}

	auth, err := atm.NewAuthenticator(cfg.PIN, cfg.PINHashCost)
	if err != nil {
		logger.Log.Fatal("Failed to create authenticator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := atm.NewSession(ledger, auth, os.Stdin, os.Stdout, logger.Log)
	if err := session.Run(ctx); err != nil && !errors.Is(err, atm.ErrInputClosed) && !errors.Is(err, context.Canceled) {
		logger.Log.Error("Session failed", zap.Error(err))
	}
}
