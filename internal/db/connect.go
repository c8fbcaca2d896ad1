package db

import (
	"fmt"
	"time"

	"communication/internal/config"
)

// PasswordSource resolves a secret reference to a password.
type PasswordSource interface {
	Password(arn string) (string, error)
}

// MongoOptionsFromConfig builds the connection options for cfg. The password
// is only looked up when a secret ARN is configured; secrets may be nil otherwise.
func MongoOptionsFromConfig(cfg *config.Config, secrets PasswordSource) (MongoOptions, error) {
	opts := MongoOptions{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		ConnectTimeout: time.Duration(cfg.MongoConnectTimeout) * time.Second,
	}
	if cfg.MongoPasswordSecretARN == "" {
		return opts, nil
	}
	if secrets == nil {
		return MongoOptions{}, fmt.Errorf("mongo password secret %s set but no secrets client", cfg.MongoPasswordSecretARN)
	}
	password, err := secrets.Password(cfg.MongoPasswordSecretARN)
	if err != nil {
		return MongoOptions{}, fmt.Errorf("resolve mongo password: %w", err)
	}
	opts.Password = password
	log.WithField("secret", cfg.MongoPasswordSecretARN).Debug("mongo password loaded from secrets manager")
	return opts, nil
}
