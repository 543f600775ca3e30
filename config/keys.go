// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Top-level configuration keys
	LogLevelKey           = "log-level"
	APIPortKey            = "api-port"
	LocalChainIDKey       = "local-chain-id"
	RelayerSchemeKey      = "relayer-scheme"
	RelayerPublicKeyKey   = "relayer-public-key"
	StorageBackendKey     = "storage-backend"
	StorageLocationKey    = "storage-location"
	RedisURLKey           = "redis-url"
	MongoURIKey           = "mongo-uri"
	MongoDatabaseKey      = "mongo-database"
	AdminCallersKey       = "admin-callers"
	APITokensKey          = "api-tokens"
	SupportedChainsKey    = "supported-chains"
	SignatureCacheSizeKey = "signature-cache-size"
	EventHistorySizeKey   = "event-history-size"

	// Relayer configuration keys
	RelayerSourceURLKey               = "relayer-source-url"
	RelayerDestinationURLKey          = "relayer-destination-url"
	RelayerSigningKeyKey              = "relayer-signing-key"
	RelayerSourceChainIDKey           = "relayer-source-chain-id"
	RelayerDestinationChainIDKey      = "relayer-destination-chain-id"
	RelayerAPITokenKey                = "relayer-api-token"
	RelayTimeoutSecondsKey            = "relay-timeout-seconds"
	CheckpointWriteIntervalSecondsKey = "checkpoint-write-interval-seconds"
)
