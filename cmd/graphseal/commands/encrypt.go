package commands

import (
	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
)

// symmetricKey returns --key, or the encryption key of the loaded pair.
func symmetricKey(key string) (string, error) {
	if key != "" {
		return key, nil
	}
	pair, err := loadPair()
	if err != nil {
		return "", err
	}
	return crypto.EncryptionKey(pair), nil
}

func encryptCmd() *cobra.Command {
	var key, alg, encoding string
	cmd := &cobra.Command{
		Use:   "encrypt <data|->",
		Short: "Encrypt data and print the packed envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := symmetricKey(key)
			if err != nil {
				return err
			}
			data, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := w.Suite.EncryptPacked(cmd.Context(), data, k, crypto.EncryptOptions{
				Encoding:  crypto.Encoding(encoding),
				Algorithm: crypto.Algorithm(alg),
			})
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&key, "key", "", "key material (default: your pair's encryption key)")
	f.StringVar(&alg, "alg", "", "AES-GCM (default) or XChaCha20-Poly1305")
	f.StringVar(&encoding, "encoding", "", "field encoding: base64 (default), base64url or hex")
	return cmd
}

func decryptCmd() *cobra.Command {
	var key, alg, encoding string
	cmd := &cobra.Command{
		Use:   "decrypt <envelope|->",
		Short: "Decrypt an envelope and print its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := symmetricKey(key)
			if err != nil {
				return err
			}
			env, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := w.Suite.Decrypt(cmd.Context(), env, k, crypto.DecryptOptions{
				Encoding:  crypto.Encoding(encoding),
				Algorithm: crypto.Algorithm(alg),
			})
			if err != nil {
				return err
			}
			return printValue(cmd, data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&key, "key", "", "key material (default: your pair's encryption key)")
	f.StringVar(&alg, "alg", "", "AES-GCM (default) or XChaCha20-Poly1305")
	f.StringVar(&encoding, "encoding", "", "field encoding: base64 (default), base64url or hex")
	return cmd
}

func secretCmd() *cobra.Command {
	var info, to string
	cmd := &cobra.Command{
		Use:   "secret --to <their-epub>",
		Short: "Derive the secret shared with another pair's encryption key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := loadPair()
			if err != nil {
				return err
			}
			s, err := w.Suite.Secret(cmd.Context(), to, pair, crypto.SecretOptions{Info: info})
			if err != nil {
				return err
			}
			return printValue(cmd, s)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "the other pair's encryption public key")
	cmd.Flags().StringVar(&info, "info", "", "expand the secret with HKDF under this context")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
