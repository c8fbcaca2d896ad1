package db

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communication/internal/config"
)

func TestMongoOptionsFromConfig(t *testing.T) {
	t.Run("no secret", func(t *testing.T) {
		cfg := config.Default()
		opts, err := MongoOptionsFromConfig(cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "mongodb://localhost:27017", opts.URI)
		assert.Equal(t, "CommunicationDb", opts.Database)
		assert.Equal(t, 10*time.Second, opts.ConnectTimeout)
		assert.Empty(t, opts.Password)
	})

	t.Run("secret resolved", func(t *testing.T) {
		cfg := config.Default()
		cfg.MongoPasswordSecretARN = "arn:db"
		api := new(mockSecretsManager)
		api.On("GetSecretValue", "arn:db").Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("s3cret")}, nil)

		opts, err := MongoOptionsFromConfig(cfg, NewSecretsClientWithAPI(api))
		require.NoError(t, err)
		assert.Equal(t, "s3cret", opts.Password)
		api.AssertExpectations(t)
	})

	t.Run("secret lookup fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.MongoPasswordSecretARN = "arn:db"
		api := new(mockSecretsManager)
		api.On("GetSecretValue", "arn:db").Return(nil, errors.New("access denied"))

		_, err := MongoOptionsFromConfig(cfg, NewSecretsClientWithAPI(api))
		assert.ErrorContains(t, err, "access denied")
	})

	t.Run("secret without client", func(t *testing.T) {
		cfg := config.Default()
		cfg.MongoPasswordSecretARN = "arn:db"
		_, err := MongoOptionsFromConfig(cfg, nil)
		assert.Error(t, err)
	})
}
