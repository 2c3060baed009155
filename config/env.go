package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvPrivateKey = "PRIVATE_KEY"
	EnvRPCURL     = "ALCHEMY_RPC_URL"
)

var ErrMissingEnv = errors.New("required environment variable not set")

// SecureConfig holds the secrets that never live in the config file
type SecureConfig struct {
	PrivateKey string
	RPCURL     string
}

// LoadEnv loads environment variables from a .env file if one exists
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, key)
	}
	return value, nil
}

// LoadSecureConfig reads the wallet key and RPC endpoint from the environment
func LoadSecureConfig() (*SecureConfig, error) {
	privateKey, err := GetRequiredEnv(EnvPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key not found: %w", err)
	}

	rpcURL, err := GetRequiredEnv(EnvRPCURL)
	if err != nil {
		return nil, fmt.Errorf("rpc url not found: %w", err)
	}

	return &SecureConfig{
		PrivateKey: privateKey,
		RPCURL:     rpcURL,
	}, nil
}
