package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"ledger-service/internal/config"
	"ledger-service/internal/repository"
	"ledger-service/internal/usecase"
	"ledger-service/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("Ledger: No .env file found, relying on system env vars")
	}

	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Ledger: logger init failed: %v", err)
	}
	defer logger.Sync()

	accounts, rates, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		logger.Fatal("seed load failed", zap.Error(err))
	}

	directory, err := repository.NewAccountDirectory(accounts)
	if err != nil {
		logger.Fatal("account directory build failed", zap.Error(err))
	}
	ledger := repository.NewLedger(accounts)
	ids := utils.NewIDGenerator()

	fees, err := feeSchedule(cfg)
	if err != nil {
		logger.Fatal("fee config invalid", zap.Error(err))
	}

	accounting := usecase.NewAccountingUsecase(directory, ledger, ids, logger)
	pricing := usecase.NewPricingUsecase(rates, fees, accounting, logger)
	transfers := usecase.NewTransferUsecase(accounting, pricing, directory, logger)

	logger.Info("ledger service ready",
		zap.Int("accounts", len(directory.All())),
		zap.Int("fx_rates", len(rates)),
		zap.Int("pending_legs", transfers.Pending()))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("ledger service shutting down gracefully")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func feeSchedule(cfg config.AppConfig) (usecase.FeeSchedule, error) {
	debit, err := decimal.NewFromString(cfg.DebitFee)
	if err != nil {
		return usecase.FeeSchedule{}, err
	}
	credit, err := decimal.NewFromString(cfg.CreditFee)
	if err != nil {
		return usecase.FeeSchedule{}, err
	}
	return usecase.FeeSchedule{DebitFee: debit, CreditFee: credit}, nil
}
