// Command seed instantiates the rate configuration from a JSON file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"ratesvc/internal/config"
	"ratesvc/internal/logger"
	"ratesvc/internal/repositories"
	"ratesvc/internal/services/rates"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envFileFlag := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	fileFlag := flag.String("file", "rates.json", "JSON file holding owner, operators and rates")
	ownerFlag := flag.String("owner", "", "owner address, overrides the file (or set ADMIN_ADDRESS env var)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	config.LoadEnv(*envFileFlag)
	log := logger.New(*verboseFlag)
	slog.SetDefault(log)

	data, err := os.ReadFile(*fileFlag)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *fileFlag, err)
	}
	var req rates.InstantiateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse %s: %w", *fileFlag, err)
	}
	if envOwner := os.Getenv("ADMIN_ADDRESS"); envOwner != "" && req.Owner == "" {
		req.Owner = envOwner
	}
	if *ownerFlag != "" {
		req.Owner = *ownerFlag
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := repositories.InitDB(cfg); err != nil {
		return err
	}
	defer repositories.Close()

	svc, err := rates.NewService(
		repositories.NewRatesRepository(repositories.DB),
		repositories.CacheService,
		rates.ServiceConfig{ContractAddress: cfg.ContractAddress, Logger: log},
		nil,
	)
	if err != nil {
		return err
	}

	if _, err := svc.Instantiate(context.Background(), req); err != nil {
		if errors.Is(err, rates.ErrAlreadyInstantiated) {
			log.Info("rates already instantiated", "contract", cfg.ContractAddress)
			return nil
		}
		return err
	}

	log.Info("rates instantiated", "contract", cfg.ContractAddress, "owner", req.Owner, "rates", len(req.Rates))
	return nil
}
