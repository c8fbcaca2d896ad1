package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"communication/internal/config"
	"communication/internal/db"
	"communication/internal/logging"
	"communication/internal/repository"
	"communication/internal/service"
)

func newRootCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load users from a YAML file into the users collection",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			users, err := parseSeedFile(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			log.WithField("file", file).Infof("read %d users", len(users))

			if dryRun {
				for _, u := range users {
					fmt.Fprintf(cmd.OutOrStdout(), "would create %s <%s>\n", u.Name, u.Email)
				}
				return nil
			}

			return withUserService(cmd.Context(), func(svc service.UserService) error {
				res, err := seedUsers(cmd.Context(), svc, users)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file listing users")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print users without writing")
	return cmd
}

// withUserService connects to MongoDB with the server's configuration and
// runs fn against a user service without a cache.
func withUserService(ctx context.Context, fn func(service.UserService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	var secrets db.PasswordSource
	if cfg.MongoPasswordSecretARN != "" {
		sc, err := db.NewSecretsClient(cfg.AWSRegion)
		if err != nil {
			return err
		}
		secrets = sc
	}
	opts, err := db.MongoOptionsFromConfig(cfg, secrets)
	if err != nil {
		return err
	}
	client, database, err := db.NewMongo(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("mongo disconnect")
		}
	}()

	if err := repository.EnsureUserIndexes(ctx, database); err != nil {
		return err
	}
	return fn(service.NewUserService(repository.NewUserRepository(database), nil, cfg.BcryptCost))
}
