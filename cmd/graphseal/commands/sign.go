package commands

import (
	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
)

func signCmd() *cobra.Command {
	var encoding string
	cmd := &cobra.Command{
		Use:   "sign <data|->",
		Short: "Sign data with your pair and print the packed envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := loadPair()
			if err != nil {
				return err
			}
			data, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := w.Suite.SignPacked(cmd.Context(), data, pair, crypto.SignOptions{Encoding: crypto.Encoding(encoding)})
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
	cmd.Flags().StringVar(&encoding, "encoding", "", "signature encoding: base64 (default), base64url or hex")
	return cmd
}

func verifyCmd() *cobra.Command {
	var encoding, pub string
	cmd := &cobra.Command{
		Use:   "verify <signed|-> --pub <pub>",
		Short: "Verify a signed envelope and print its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			data, err := w.Suite.Verify(cmd.Context(), signed, pub, crypto.VerifyOptions{Encoding: crypto.Encoding(encoding)})
			if err != nil {
				return err
			}
			return printValue(cmd, data)
		},
	}
	cmd.Flags().StringVar(&pub, "pub", "", "signer's public key")
	cmd.Flags().StringVar(&encoding, "encoding", "", "signature encoding: base64 (default), base64url, hex or utf8")
	_ = cmd.MarkFlagRequired("pub")
	return cmd
}
