// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/utils"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap/zapcore"
)

const (
	StorageBackendMemory    = "memory"
	StorageBackendGoLevelDB = "goleveldb"
	StorageBackendRedis     = "redis"
	StorageBackendMongo     = "mongo"
)

const (
	defaultLogLevel                       = "info"
	defaultAPIPort                        = uint16(8080)
	defaultStorageBackend                 = StorageBackendMemory
	defaultMongoDatabase                  = "gateway"
	defaultRelayTimeoutSeconds            = uint64(30)
	defaultCheckpointWriteIntervalSeconds = uint64(10)
	DefaultSignatureCacheSize             = gateway.DefaultCacheSize
)

var (
	errMissingStorageLocation = errors.New("storage-location is required for the goleveldb backend")
	errMissingRedisURL        = errors.New("redis-url is required for the redis backend")
	errMissingMongoURI        = errors.New("mongo-uri is required for the mongo backend")
	errMissingRelayerKey      = errors.New("relayer-signing-key is required")
	errMissingRelayerURL      = errors.New("relayer-source-url and relayer-destination-url are required")
	errSameChain              = errors.New("relayer source and destination chains must differ")
	errZeroWriteInterval      = errors.New("checkpoint-write-interval-seconds must be positive")
	errInvalidAPIToken        = errors.New("invalid api-tokens entry")
)

// Config holds the settings of both the gateway node and the relayer.
type Config struct {
	LogLevel           string   `mapstructure:"log-level" json:"log-level"`
	APIPort            uint16   `mapstructure:"api-port" json:"api-port"`
	LocalChainID       uint32   `mapstructure:"local-chain-id" json:"local-chain-id"`
	RelayerScheme      string   `mapstructure:"relayer-scheme" json:"relayer-scheme"`
	RelayerPublicKey   string   `mapstructure:"relayer-public-key" json:"relayer-public-key"`
	StorageBackend     string   `mapstructure:"storage-backend" json:"storage-backend"`
	StorageLocation    string   `mapstructure:"storage-location" json:"storage-location"`
	RedisURL           string   `mapstructure:"redis-url" json:"redis-url"`
	MongoURI           string   `mapstructure:"mongo-uri" json:"mongo-uri"`
	MongoDatabase      string   `mapstructure:"mongo-database" json:"mongo-database"`
	AdminCallers       []string `mapstructure:"admin-callers" json:"admin-callers"`
	APITokens          []string `mapstructure:"api-tokens" json:"api-tokens"`
	SupportedChains    []uint32 `mapstructure:"supported-chains" json:"supported-chains"`
	SignatureCacheSize int      `mapstructure:"signature-cache-size" json:"signature-cache-size"`
	EventHistorySize   int      `mapstructure:"event-history-size" json:"event-history-size"`

	RelayerSourceURL               string `mapstructure:"relayer-source-url" json:"relayer-source-url"`
	RelayerDestinationURL          string `mapstructure:"relayer-destination-url" json:"relayer-destination-url"`
	RelayerSigningKey              string `mapstructure:"relayer-signing-key" json:"relayer-signing-key"`
	RelayerSourceChainID           uint32 `mapstructure:"relayer-source-chain-id" json:"relayer-source-chain-id"`
	RelayerDestinationChainID      uint32 `mapstructure:"relayer-destination-chain-id" json:"relayer-destination-chain-id"`
	RelayerAPIToken                string `mapstructure:"relayer-api-token" json:"relayer-api-token"`
	RelayTimeoutSeconds            uint64 `mapstructure:"relay-timeout-seconds" json:"relay-timeout-seconds"`
	CheckpointWriteIntervalSeconds uint64 `mapstructure:"checkpoint-write-interval-seconds" json:"checkpoint-write-interval-seconds"`
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	if _, err := signature.Default.PublicKeyLen(c.GetRelayerScheme()); err != nil {
		return err
	}
	switch c.StorageBackend {
	case StorageBackendMemory:
	case StorageBackendGoLevelDB:
		if c.StorageLocation == "" {
			return errMissingStorageLocation
		}
	case StorageBackendRedis:
		if c.RedisURL == "" {
			return errMissingRedisURL
		}
	case StorageBackendMongo:
		if c.MongoURI == "" {
			return errMissingMongoURI
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if _, err := c.GetAdminCallers(); err != nil {
		return err
	}
	if _, err := c.GetAPITokens(); err != nil {
		return err
	}
	if c.RelayerPublicKey != "" {
		if _, err := utils.DecodeHexString(c.RelayerPublicKey); err != nil {
			return fmt.Errorf("invalid relayer-public-key: %w", err)
		}
	}
	return nil
}

// ValidateRelayer checks the settings the relay command needs.
func (c *Config) ValidateRelayer() error {
	if c.RelayerSigningKey == "" {
		return errMissingRelayerKey
	}
	if _, err := utils.DecodeHexString(c.RelayerSigningKey); err != nil {
		return fmt.Errorf("invalid relayer-signing-key: %w", err)
	}
	if c.RelayerSourceURL == "" || c.RelayerDestinationURL == "" {
		return errMissingRelayerURL
	}
	for _, u := range []string{c.RelayerSourceURL, c.RelayerDestinationURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("invalid relayer url %q: %w", u, err)
		}
	}
	if c.RelayerSourceChainID == c.RelayerDestinationChainID {
		return errSameChain
	}
	if c.CheckpointWriteIntervalSeconds == 0 {
		return errZeroWriteInterval
	}
	return nil
}

func (c *Config) GetLogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("invalid log-level: %w", err)
	}
	return level, nil
}

func (c *Config) GetRelayerScheme() signature.Scheme {
	if c.RelayerScheme == "" {
		return signature.SchemeSecp256k1
	}
	return signature.Scheme(c.RelayerScheme)
}

func (c *Config) GetRelayerPublicKey() ([]byte, error) {
	return utils.DecodeHexString(c.RelayerPublicKey)
}

func (c *Config) GetRelayerSigningKey() ([]byte, error) {
	return utils.DecodeHexString(c.RelayerSigningKey)
}

// GetAdminCallers decodes the identities allowed to change the chain
// allow-list. An empty list admits every caller.
func (c *Config) GetAdminCallers() ([][]byte, error) {
	callers := make([][]byte, 0, len(c.AdminCallers))
	for _, s := range c.AdminCallers {
		b, err := decodeIdentity(s)
		if err != nil {
			return nil, fmt.Errorf("invalid admin caller %q: %w", s, err)
		}
		callers = append(callers, b)
	}
	return callers, nil
}

// GetAPITokens parses the API tokens into a token to identity map. Each
// entry has the form <hex identity>:<token>.
func (c *Config) GetAPITokens() (map[string]common.Hash, error) {
	tokens := make(map[string]common.Hash, len(c.APITokens))
	for _, entry := range c.APITokens {
		identity, token, ok := strings.Cut(entry, ":")
		if !ok || token == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidAPIToken, entry)
		}
		b, err := decodeIdentity(identity)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errInvalidAPIToken, entry, err)
		}
		if _, ok := tokens[token]; ok {
			return nil, fmt.Errorf("%w: duplicate token for %s", errInvalidAPIToken, identity)
		}
		tokens[token] = common.BytesToHash(b)
	}
	return tokens, nil
}

func decodeIdentity(s string) ([]byte, error) {
	b, err := utils.DecodeHexString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != gateway.IdentityLen {
		return nil, fmt.Errorf("expected %d bytes, got %d", gateway.IdentityLen, len(b))
	}
	return b, nil
}
