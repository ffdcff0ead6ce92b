package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
)

func initCmd() *cobra.Command {
	var seed, mnemonic string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a key pair and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			s, err := seedBytes(seed, mnemonic)
			if err != nil {
				return err
			}
			_, fp, err := w.Identity.GenerateIdentity(cmd.Context(), passphrase, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity created.\nFingerprint: %s\n", fp)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "derive the pair deterministically from this seed")
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "derive the pair from a BIP-39 phrase")
	return cmd
}

// seedBytes picks the seed from --seed or --mnemonic. Both empty means a
// random pair.
func seedBytes(seed, mnemonic string) ([]byte, error) {
	switch {
	case seed != "" && mnemonic != "":
		return nil, fmt.Errorf("use either --seed or --mnemonic")
	case mnemonic != "":
		return crypto.MnemonicSeed(mnemonic, "")
	case seed != "":
		return []byte(seed), nil
	}
	return nil, nil
}
