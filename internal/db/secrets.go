package db

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// SecretsClient fetches the MongoDB password from AWS Secrets Manager.
type SecretsClient struct {
	api secretsmanageriface.SecretsManagerAPI
}

// NewSecretsClient creates a Secrets Manager client for region.
func NewSecretsClient(region string) (*SecretsClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &SecretsClient{api: secretsmanager.New(sess)}, nil
}

// NewSecretsClientWithAPI wraps an existing Secrets Manager API implementation.
func NewSecretsClientWithAPI(api secretsmanageriface.SecretsManagerAPI) *SecretsClient {
	return &SecretsClient{api: api}
}

// Password returns the plain string value of the secret identified by arn.
func (c *SecretsClient) Password(arn string) (string, error) {
	result, err := c.api.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("get secret value: %w", err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", arn)
	}
	return *result.SecretString, nil
}
