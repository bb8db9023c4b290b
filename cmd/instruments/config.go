package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/peter-kozarec/oanda/pkg/exchange/oanda"
)

const (
	envAccountId   = "OANDA_ACCOUNT_ID"
	envAuthToken   = "OANDA_AUTH_TOKEN"
	envEnvironment = "OANDA_ENVIRONMENT"

	defaultEnvFile     = ".env"
	defaultEnvironment = "practice"
)

var errMissingVariable = errors.New("missing environment variable")

type config struct {
	accountId string
	authToken string
	baseUrl   string
}

// loadConfig reads the process environment, filling gaps from envFile. A
// missing default env file is not an error.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || envFile != defaultEnvFile {
				return config{}, fmt.Errorf("unable to load %s: %w", envFile, err)
			}
		}
	}

	cfg := config{
		accountId: os.Getenv(envAccountId),
		authToken: os.Getenv(envAuthToken),
	}
	if cfg.accountId == "" {
		return config{}, fmt.Errorf("%s: %w", envAccountId, errMissingVariable)
	}
	if cfg.authToken == "" {
		return config{}, fmt.Errorf("%s: %w", envAuthToken, errMissingVariable)
	}

	environment := os.Getenv(envEnvironment)
	if environment == "" {
		environment = defaultEnvironment
	}

	baseUrl, err := oanda.EnvironmentURL(environment)
	if err != nil {
		return config{}, fmt.Errorf("invalid %s: %w", envEnvironment, err)
	}
	cfg.baseUrl = baseUrl

	return cfg, nil
}
