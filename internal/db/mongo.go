package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var log = logrus.WithField("logger", "db")

// MongoOptions configures NewMongo.
type MongoOptions struct {
	URI      string
	Database string
	// Password, when set, overrides any password in URI. The user name is taken from URI.
	Password       string
	ConnectTimeout time.Duration
}

// NewMongo connects to MongoDB, verifies the connection and returns the client
// together with the application database.
func NewMongo(ctx context.Context, opts MongoOptions) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(opts.URI)
	if opts.Password != "" {
		cred := options.Credential{Password: opts.Password, PasswordSet: true}
		if clientOptions.Auth != nil {
			cred.Username = clientOptions.Auth.Username
			cred.AuthMechanism = clientOptions.Auth.AuthMechanism
			cred.AuthSource = clientOptions.Auth.AuthSource
		}
		clientOptions.SetAuth(cred)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	clientOptions.SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.WithField("database", opts.Database).Info("connected to mongo")
	return client, client.Database(opts.Database), nil
}
