// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"github.com/spf13/pflag"
)

// AddFlags registers every configuration key on fs. Defaults live in
// SetDefaultConfigValues so a config file can still override them.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Specifies the JSON config file")
	fs.String(LogLevelKey, "", "Log level (debug, info, warn, error)")
	fs.Uint16(APIPortKey, 0, "Port the HTTP API listens on")
	fs.Uint32(LocalChainIDKey, 0, "Chain id the gateway is installed on")
	fs.String(RelayerSchemeKey, "", "Signature scheme of the trusted relayer key")
	fs.String(RelayerPublicKeyKey, "", "Hex encoded public key of the trusted relayer")
	fs.String(StorageBackendKey, "", "Storage backend (memory, goleveldb, redis, mongo)")
	fs.String(StorageLocationKey, "", "Directory of the goleveldb database")
	fs.String(RedisURLKey, "", "Redis connection URL")
	fs.String(MongoURIKey, "", "MongoDB connection URI of a replica set or sharded cluster")
	fs.String(MongoDatabaseKey, "", "MongoDB database name")
	fs.StringSlice(AdminCallersKey, nil, "Hex encoded identities allowed to change supported chains")
	fs.StringSlice(APITokensKey, nil, "API bearer tokens as <hex identity>:<token>")
	fs.IntSlice(SupportedChainsKey, nil, "Chains supported from installation")
	fs.Int(SignatureCacheSizeKey, 0, "Entries kept in the executed message cache")
	fs.Int(EventHistorySizeKey, 0, "Sent events kept for resuming event streams")

	fs.String(RelayerSourceURLKey, "", "API URL of the source gateway")
	fs.String(RelayerDestinationURLKey, "", "API URL of the destination gateway")
	fs.String(RelayerSigningKeyKey, "", "Hex encoded private key of the relayer")
	fs.Uint32(RelayerSourceChainIDKey, 0, "Chain id of the source gateway")
	fs.Uint32(RelayerDestinationChainIDKey, 0, "Chain id of the destination gateway")
	fs.String(RelayerAPITokenKey, "", "Bearer token the relayer presents to the destination API")
	fs.Uint64(RelayTimeoutSecondsKey, 0, "Time spent retrying one message")
	fs.Uint64(CheckpointWriteIntervalSecondsKey, 0, "Interval between relayer checkpoint writes")
}
