// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luxfi/gateway/crypto/signature"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var testIdentity = "0x" + strings.Repeat("ab", 32)

func buildTestConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	v, err := BuildViper(fs)
	require.NoError(t, err)
	return NewConfig(v)
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := buildTestConfig(t)
	require.NoError(err)
	require.Equal(defaultLogLevel, cfg.LogLevel)
	require.Equal(defaultAPIPort, cfg.APIPort)
	require.Equal(uint32(3), cfg.LocalChainID)
	require.Equal(StorageBackendMemory, cfg.StorageBackend)
	require.Equal(signature.SchemeSecp256k1, cfg.GetRelayerScheme())
	require.Equal(DefaultSignatureCacheSize, cfg.SignatureCacheSize)
	require.Equal(defaultRelayTimeoutSeconds, cfg.RelayTimeoutSeconds)

	level, err := cfg.GetLogLevel()
	require.NoError(err)
	require.Equal(zapcore.InfoLevel, level)

	callers, err := cfg.GetAdminCallers()
	require.NoError(err)
	require.Empty(callers)
}

func TestFlags(t *testing.T) {
	require := require.New(t)

	cfg, err := buildTestConfig(t,
		"--log-level=debug",
		"--local-chain-id=7",
		"--supported-chains=1,2",
		"--admin-callers="+testIdentity,
		"--api-tokens="+testIdentity+":s3cr:et",
		"--storage-backend=goleveldb",
		"--storage-location=/tmp/gateway",
	)
	require.NoError(err)
	require.Equal("debug", cfg.LogLevel)
	require.Equal(uint32(7), cfg.LocalChainID)
	require.Equal([]uint32{1, 2}, cfg.SupportedChains)
	require.Equal("/tmp/gateway", cfg.StorageLocation)

	callers, err := cfg.GetAdminCallers()
	require.NoError(err)
	require.Len(callers, 1)
	require.Len(callers[0], 32)

	tokens, err := cfg.GetAPITokens()
	require.NoError(err)
	require.Len(tokens, 1)
	require.Equal(callers[0], tokens["s3cr:et"].Bytes())
}

func TestConfigFileAndEnv(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"api-port": 9000,
		"local-chain-id": 5,
		"storage-backend": "redis",
		"redis-url": "redis://localhost:6379/0"
	}`), 0o600))
	t.Setenv("LOCAL_CHAIN_ID", "6")

	cfg, err := buildTestConfig(t, "--config-file="+path)
	require.NoError(err)
	require.Equal(uint16(9000), cfg.APIPort)
	require.Equal(StorageBackendRedis, cfg.StorageBackend)
	// environment takes precedence over the file
	require.Equal(uint32(6), cfg.LocalChainID)

	// flags take precedence over both
	cfg, err = buildTestConfig(t, "--config-file="+path, "--local-chain-id=8")
	require.NoError(err)
	require.Equal(uint32(8), cfg.LocalChainID)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{
			name: "bad log level",
			args: []string{"--log-level=loud"},
		},
		{
			name: "unknown scheme",
			args: []string{"--relayer-scheme=rsa"},
		},
		{
			name: "unknown backend",
			args: []string{"--storage-backend=sqlite"},
		},
		{
			name:        "goleveldb without location",
			args:        []string{"--storage-backend=goleveldb"},
			expectedErr: errMissingStorageLocation,
		},
		{
			name:        "redis without url",
			args:        []string{"--storage-backend=redis"},
			expectedErr: errMissingRedisURL,
		},
		{
			name:        "mongo without uri",
			args:        []string{"--storage-backend=mongo"},
			expectedErr: errMissingMongoURI,
		},
		{
			name: "short admin caller",
			args: []string{"--admin-callers=0x01"},
		},
		{
			name: "bad relayer key",
			args: []string{"--relayer-public-key=xyz"},
		},
		{
			name:        "api token without identity",
			args:        []string{"--api-tokens=secret"},
			expectedErr: errInvalidAPIToken,
		},
		{
			name:        "api token with short identity",
			args:        []string{"--api-tokens=0x01:secret"},
			expectedErr: errInvalidAPIToken,
		},
		{
			name:        "duplicate api token",
			args:        []string{"--api-tokens=" + testIdentity + ":secret," + testIdentity + ":secret"},
			expectedErr: errInvalidAPIToken,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			_, err := buildTestConfig(t, test.args...)
			require.Error(err)
			if test.expectedErr != nil {
				require.ErrorIs(err, test.expectedErr)
			}
		})
	}
}

func TestValidateRelayer(t *testing.T) {
	valid := Config{
		RelayerSigningKey:              "0x" + strings.Repeat("11", 32),
		RelayerSourceURL:               "http://localhost:8080",
		RelayerDestinationURL:          "http://localhost:8081",
		RelayerSourceChainID:           1,
		RelayerDestinationChainID:      3,
		CheckpointWriteIntervalSeconds: 10,
	}
	testCases := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:        "missing key",
			modify:      func(c *Config) { c.RelayerSigningKey = "" },
			expectedErr: errMissingRelayerKey,
		},
		{
			name:        "missing url",
			modify:      func(c *Config) { c.RelayerDestinationURL = "" },
			expectedErr: errMissingRelayerURL,
		},
		{
			name:        "same chain",
			modify:      func(c *Config) { c.RelayerDestinationChainID = 1 },
			expectedErr: errSameChain,
		},
		{
			name:        "zero write interval",
			modify:      func(c *Config) { c.CheckpointWriteIntervalSeconds = 0 },
			expectedErr: errZeroWriteInterval,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			cfg := valid
			test.modify(&cfg)
			err := cfg.ValidateRelayer()
			switch {
			case test.name == "valid":
				require.NoError(err)
			case test.expectedErr != nil:
				require.ErrorIs(err, test.expectedErr)
			default:
				require.Error(err)
			}
		})
	}
}
