// internal/pkg/config/secrets.go
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/goccy/go-json"
)

// Secret keys overlaid onto the configuration.
const (
	SecretJWT           = "JWT_SECRET"
	SecretDBPassword    = "DB_PASSWORD"
	SecretRedisPassword = "REDIS_PASSWORD"
	SecretAWSAccessKey  = "AWS_ACCESS_KEY_ID"
	SecretAWSSecretKey  = "AWS_SECRET_ACCESS_KEY"
)

// secretBindings maps each secret onto the config field(s) it fills. The
// redis password is shared by the cache and the asynq broker.
var secretBindings = map[string]func(*Config, string){
	SecretJWT:        func(c *Config, v string) { c.Security.JWTSecret = v },
	SecretDBPassword: func(c *Config, v string) { c.Database.Password = v },
	SecretRedisPassword: func(c *Config, v string) {
		c.Redis.Password = v
		c.Asynq.RedisPassword = v
	},
	SecretAWSAccessKey: func(c *Config, v string) { c.AWS.AccessKeyID = v },
	SecretAWSSecretKey: func(c *Config, v string) { c.AWS.SecretAccessKey = v },
}

func secretKeys() []string {
	keys := make([]string, 0, len(secretBindings))
	for k := range secretBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SecretsManager reads named secrets.
type SecretsManager interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager reads a single JSON secret document from AWS Secrets
// Manager and serves keys out of it. The document is refetched once ttl has
// passed.
type AWSSecretsManager struct {
	client     secretsAPI
	secretName string
	ttl        time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	doc       map[string]string
	fetchedAt time.Time
}

func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newAWSSecretsManager(secretsmanager.NewFromConfig(cfg), secretName, logger), nil
}

func newAWSSecretsManager(client secretsAPI, secretName string, logger *slog.Logger) *AWSSecretsManager {
	return &AWSSecretsManager{
		client:     client,
		secretName: secretName,
		ttl:        5 * time.Minute,
		logger:     logger.With(slog.String("component", "secrets"), slog.String("secret_name", secretName)),
	}
}

// GetSecrets returns the requested keys present in the secret document.
// Missing keys are logged and left out.
func (sm *AWSSecretsManager) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	doc, err := sm.document(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := doc[key]; ok {
			found[key] = v
			continue
		}
		sm.logger.Warn("secret key not present", slog.String("key", key))
	}
	return found, nil
}

func (sm *AWSSecretsManager) document(ctx context.Context) (map[string]string, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.doc != nil && time.Since(sm.fetchedAt) < sm.ttl {
		return sm.doc, nil
	}

	sm.logger.Info("fetching secret document")
	out, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(sm.secretName),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret value: %w", err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", sm.secretName)
	}

	var doc map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse secret JSON: %w", err)
	}

	sm.doc = doc
	sm.fetchedAt = time.Now()
	return doc, nil
}

// EnvSecretsManager reads secrets from the process environment.
type EnvSecretsManager struct{}

func (EnvSecretsManager) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	found := make(map[string]string, len(keys))
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			found[key] = v
		}
	}
	return found, nil
}

// NewSecretsManager returns the manager selected by cfg.Secrets.Provider.
func NewSecretsManager(ctx context.Context, cfg *Config, logger *slog.Logger) (SecretsManager, error) {
	switch cfg.Secrets.Provider {
	case "aws":
		return NewAWSSecretsManager(ctx, cfg.Secrets.Region, cfg.Secrets.SecretName, logger)
	case "", "env":
		return EnvSecretsManager{}, nil
	default:
		return nil, fmt.Errorf("unknown secrets provider %q", cfg.Secrets.Provider)
	}
}

// ResolveSecrets overlays credentials from the configured provider and
// validates the result. With the env provider the values were already read
// by Load, so nothing is fetched.
func ResolveSecrets(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	if cfg.Secrets.Provider == "" || cfg.Secrets.Provider == "env" {
		return nil
	}

	sm, err := NewSecretsManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return applySecrets(ctx, cfg, sm)
}

func applySecrets(ctx context.Context, cfg *Config, sm SecretsManager) error {
	secrets, err := sm.GetSecrets(ctx, secretKeys())
	if err != nil {
		return fmt.Errorf("failed to resolve secrets: %w", err)
	}

	for key, v := range secrets {
		if bind, ok := secretBindings[key]; ok {
			bind(cfg, v)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
