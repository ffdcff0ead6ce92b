package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	var pub string
	cmd := &cobra.Command{
		Use:   "fingerprint [--pub <pub>]",
		Short: "Print the fingerprint and key ID of a public key (default: own pair)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pub == "" {
				pair, err := loadPair()
				if err != nil {
					return err
				}
				pub = pair.Pub
			}
			fp, err := crypto.Fingerprint(pub)
			if err != nil {
				return err
			}
			id, err := crypto.KeyID(pub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\nKey ID: %s\n", fp, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&pub, "pub", "", "public key to fingerprint")
	return cmd
}
