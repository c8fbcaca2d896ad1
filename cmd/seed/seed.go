package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "communication/internal/errors"
	"communication/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedResult counts what a seed run did.
type SeedResult struct {
	Created int
	Skipped int
}

func parseSeedFile(r io.Reader) ([]SeedUser, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("user %d: email is required", i+1)
		}
	}
	return f.Users, nil
}

// seedUsers creates each user in order. Emails that are already registered
// are skipped; any other error stops the run.
func seedUsers(ctx context.Context, svc service.UserService, users []SeedUser) (SeedResult, error) {
	var res SeedResult
	for _, u := range users {
		created, err := svc.CreateUser(ctx, u.Name, u.Email, u.Password)
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			log.WithField("email", u.Email).Info("already registered, skipping")
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("create %s: %w", u.Email, err)
		}
		log.WithField("email", u.Email).WithField("id", created.ID.Hex()).Info("created user")
		res.Created++
	}
	return res, nil
}
