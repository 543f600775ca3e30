// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/luxfi/gateway"
	"github.com/luxfi/gateway/crypto/signature"
	"github.com/luxfi/gateway/precompile"
	"github.com/luxfi/gateway/utils"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a relayer key pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sk, err := signature.Default.GenerateSigner(signature.Scheme(scheme))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scheme: %s\n", sk.Scheme())
			fmt.Fprintf(out, "Public key: %s\n", utils.EncodeHexString(sk.PublicKey()))
			if exportable, ok := sk.(signature.Exportable); ok {
				fmt.Fprintf(out, "Private key: %s\n", utils.EncodeHexString(exportable.PrivateKey()))
			} else {
				fmt.Fprintln(out, "Private key: not exportable for this scheme")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scheme, "scheme", "s", string(signature.SchemeSecp256k1), "Signature scheme")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var (
		src, dst                  uint32
		sender, receiver, payload string
		nonce                     uint64
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a gateway message",
		Long:  `Build the canonical bytes of a message and print them with the message key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := map[string][]byte{}
			for name, value := range map[string]string{"sender": sender, "receiver": receiver, "payload": payload} {
				b, err := utils.DecodeHexString(value)
				if err != nil {
					return fmt.Errorf("invalid %s: %w", name, err)
				}
				fields[name] = b
			}
			msg := gateway.NewMessage(
				gateway.ChainID(src),
				gateway.ChainID(dst),
				fields["sender"],
				fields["receiver"],
				nonce,
				fields["payload"],
			)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Message: %s\n", utils.EncodeHexString(msg.Bytes()))
			fmt.Fprintf(out, "Key: %s\n", msg.Key())
			return nil
		},
	}
	cmd.Flags().Uint32Var(&src, "src", 0, "Source chain id")
	cmd.Flags().Uint32Var(&dst, "dst", 0, "Destination chain id")
	cmd.Flags().StringVar(&sender, "sender", "", "Sender identity (hex)")
	cmd.Flags().StringVar(&receiver, "receiver", "", "Receiver identity (hex)")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "Message nonce")
	cmd.Flags().StringVar(&payload, "payload", "", "Payload (hex)")
	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("dst")
	return cmd
}

type decodedMessage struct {
	Key                string `json:"key"`
	SourceChainID      uint32 `json:"source-chain-id"`
	DestinationChainID uint32 `json:"destination-chain-id"`
	Sender             string `json:"sender"`
	Receiver           string `json:"receiver"`
	Nonce              uint64 `json:"nonce"`
	Payload            string `json:"payload"`
}

func newDecodeCmd() *cobra.Command {
	var (
		message                string
		senderLen, receiverLen int
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a gateway message",
		Long: `Split canonical message bytes into their fields. The encoding does not
delimit the sender and receiver, so their widths are given as flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := utils.DecodeHexString(message)
			if err != nil {
				return fmt.Errorf("invalid message hex: %w", err)
			}
			msg, err := gateway.ParseMessage(b, senderLen, receiverLen)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(&decodedMessage{
				Key:                msg.Key(),
				SourceChainID:      uint32(msg.SourceChainID),
				DestinationChainID: uint32(msg.DestinationChainID),
				Sender:             utils.EncodeHexString(msg.Sender),
				Receiver:           utils.EncodeHexString(msg.Receiver),
				Nonce:              msg.Nonce,
				Payload:            utils.EncodeHexString(msg.Payload),
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Canonical message (hex)")
	cmd.Flags().IntVar(&senderLen, "sender-len", gateway.IdentityLen, "Sender width in bytes")
	cmd.Flags().IntVar(&receiverLen, "receiver-len", gateway.IdentityLen, "Receiver width in bytes")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newSignCmd() *cobra.Command {
	var (
		message, key, scheme   string
		senderLen, receiverLen int
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a gateway message as the relayer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := utils.DecodeHexString(message)
			if err != nil {
				return fmt.Errorf("invalid message hex: %w", err)
			}
			msg, err := gateway.ParseMessage(b, senderLen, receiverLen)
			if err != nil {
				return err
			}
			privateKey, err := utils.DecodeHexString(key)
			if err != nil {
				return fmt.Errorf("invalid key hex: %w", err)
			}
			sk, err := signature.Default.NewSigner(signature.Scheme(scheme), privateKey)
			if err != nil {
				return err
			}
			sig, err := gateway.NewSigner(sk, msg.DestinationChainID).Sign(msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.EncodeHexString(sig))
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Canonical message (hex)")
	cmd.Flags().StringVarP(&key, "key", "k", "", "Private key (hex)")
	cmd.Flags().StringVarP(&scheme, "scheme", "s", string(signature.SchemeSecp256k1), "Signature scheme")
	cmd.Flags().IntVar(&senderLen, "sender-len", gateway.IdentityLen, "Sender width in bytes")
	cmd.Flags().IntVar(&receiverLen, "receiver-len", gateway.IdentityLen, "Receiver width in bytes")
	_ = cmd.MarkFlagRequired("message")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var message, sig, publicKey, scheme string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a relayer signature over a gateway message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs := make([][]byte, 3)
			for i, value := range []string{message, sig, publicKey} {
				b, err := utils.DecodeHexString(value)
				if err != nil {
					return fmt.Errorf("invalid hex %q: %w", value, err)
				}
				inputs[i] = b
			}
			verifier, err := signature.NewVerifier(signature.Scheme(scheme), inputs[2])
			if err != nil {
				return err
			}
			if err := verifier.Verify(inputs[0], inputs[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signature valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Canonical message (hex)")
	cmd.Flags().StringVar(&sig, "signature", "", "Signature (hex)")
	cmd.Flags().StringVarP(&publicKey, "public-key", "p", "", "Relayer public key (hex)")
	cmd.Flags().StringVarP(&scheme, "scheme", "s", string(signature.SchemeSecp256k1), "Signature scheme")
	_ = cmd.MarkFlagRequired("message")
	_ = cmd.MarkFlagRequired("signature")
	_ = cmd.MarkFlagRequired("public-key")
	return cmd
}

func newEntryPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entrypoints",
		Short: "List the entry points of the gateway contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(precompile.EntryPoints)
		},
	}
}
