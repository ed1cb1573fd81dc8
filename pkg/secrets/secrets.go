// Package secrets resolves database credentials from AWS Secrets Manager.
// Values are memoized for the process lifetime; rotation requires a restart.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	appconfig "crm-service/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type api interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Provider fetches and caches secret values.
type Provider struct {
	client api

	mu    sync.Mutex
	cache map[string]string
}

// NewProvider builds a provider from the ambient AWS configuration. A
// non-empty endpoint overrides the service URL, which local stacks use.
func NewProvider(ctx context.Context, cfg *appconfig.SecretsConfig) (*Provider, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Provider{client: client, cache: make(map[string]string)}, nil
}

// Value returns the secret string for the given ARN or name.
func (p *Provider) Value(ctx context.Context, id string) (string, error) {
	p.mu.Lock()
	cached, ok := p.cache[id]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	p.mu.Lock()
	p.cache[id] = *out.SecretString
	p.mu.Unlock()
	return *out.SecretString, nil
}

// DatabaseSecret mirrors the JSON document RDS-managed secrets carry.
type DatabaseSecret struct {
	Engine   string `json:"engine"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// DatabaseDSN resolves the secret named by DatabaseSecretARN into a
// PostgreSQL connection string.
func (p *Provider) DatabaseDSN(ctx context.Context, arn string) (string, error) {
	raw, err := p.Value(ctx, arn)
	if err != nil {
		return "", err
	}

	var secret DatabaseSecret
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return "", fmt.Errorf("failed to decode database secret: %w", err)
	}

	port := secret.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=require",
		secret.Host, port, secret.Username, secret.Password, secret.DBName), nil
}
