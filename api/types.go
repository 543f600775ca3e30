// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package api

// Byte fields are hex encoded, optionally prefixed with "0x". The caller of
// a mutating request is the identity its bearer token is configured for.

type SendMessageRequest struct {
	DestinationChainID uint32 `json:"destination-chain-id"`
	Receiver           string `json:"receiver"`
	Payload            string `json:"payload"`
}

type SendMessageResponse struct {
	// canonical message bytes
	Message string `json:"message"`
	Key     string `json:"key"`
	Nonce   uint64 `json:"nonce"`
}

type ExecuteMessageRequest struct {
	SourceChainID uint32 `json:"source-chain-id"`
	SourceGateway string `json:"source-gateway"`
	Receiver      string `json:"receiver"`
	Nonce         uint64 `json:"nonce"`
	Payload       string `json:"payload"`
	Signature     string `json:"signature"`
}

type ExecuteMessageResponse struct {
	Key string `json:"key"`
}

type SetSupportedChainRequest struct {
	Supported bool `json:"supported"`
}

type ChainResponse struct {
	ChainID   uint32 `json:"chain-id"`
	Supported bool   `json:"supported"`
}

type NonceResponse struct {
	Nonce uint64 `json:"nonce"`
}

type MessageResponse struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

type ExecutedResponse struct {
	Key      string `json:"key"`
	Executed bool   `json:"executed"`
}

type InfoResponse struct {
	LocalChainID     uint32 `json:"local-chain-id"`
	Scheme           string `json:"scheme"`
	RelayerPublicKey string `json:"relayer-public-key"`
}

// ErrorResponse carries the gateway error code when the failure has one,
// and zero otherwise.
type ErrorResponse struct {
	Code    uint16 `json:"code"`
	Message string `json:"message"`
}
