// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package precompile

import "github.com/luxfi/gateway"

// Read-only entry points.
const (
	EntryPointNonce            = "nonce"
	EntryPointIsSupported      = "is_supported"
	EntryPointGetMessage       = "get_message"
	EntryPointIsExecuted       = "is_executed"
	EntryPointRelayerPublicKey = "relayer_public_key"
)

type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// EntryPoint describes one gateway entry point.
type EntryPoint struct {
	Name     string      `json:"name"`
	Params   []Parameter `json:"params"`
	Returns  string      `json:"returns"`
	Mutating bool        `json:"mutating"`
}

// EntryPoints lists every entry point of the gateway contract.
var EntryPoints = []EntryPoint{
	{
		Name: gateway.EntryPointSendMessage,
		Params: []Parameter{
			{Name: "dst_chain_id", Type: "u32"},
			{Name: "receiver", Type: "bytes"},
			{Name: "payload", Type: "bytes"},
		},
		Returns:  "bytes",
		Mutating: true,
	},
	{
		Name: gateway.EntryPointExecuteMessage,
		Params: []Parameter{
			{Name: "src_chain_id", Type: "u32"},
			{Name: "src_gateway", Type: "bytes"},
			{Name: "receiver", Type: "bytes"},
			{Name: "nonce", Type: "u64"},
			{Name: "payload", Type: "bytes"},
			{Name: "signature", Type: "bytes"},
		},
		Returns:  "unit",
		Mutating: true,
	},
	{
		Name: gateway.EntryPointSetSupportedChain,
		Params: []Parameter{
			{Name: "chain_id", Type: "u32"},
			{Name: "supported", Type: "bool"},
		},
		Returns:  "unit",
		Mutating: true,
	},
	{
		Name:    EntryPointNonce,
		Returns: "u64",
	},
	{
		Name:    EntryPointIsSupported,
		Params:  []Parameter{{Name: "chain_id", Type: "u32"}},
		Returns: "bool",
	},
	{
		Name:    EntryPointGetMessage,
		Params:  []Parameter{{Name: "key", Type: "string"}},
		Returns: "bytes",
	},
	{
		Name:    EntryPointIsExecuted,
		Params:  []Parameter{{Name: "key", Type: "string"}},
		Returns: "bool",
	},
	{
		Name:    EntryPointRelayerPublicKey,
		Returns: "bytes",
	},
}
