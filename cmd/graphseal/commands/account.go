package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
	"graphseal/internal/wire"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create or log into an alias published on the relay",
	}
	cmd.AddCommand(accountCreateCmd(), accountAuthCmd())
	return cmd
}

func accountCreateCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "create <alias>",
		Short: "Register alias with a new pair and publish it to the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			ctx := cmd.Context()
			alias := args[0]

			// The alias index must be current before checking it is free.
			if _, err := pull(ctx, "~@"+alias); err != nil {
				return err
			}
			pair, err := w.Accounts.Create(ctx, alias, passphrase)
			if err != nil {
				return err
			}
			for _, soul := range []string{"~" + pair.Pub, "~@" + alias} {
				if err := push(ctx, soul); err != nil {
					return err
				}
			}
			return reportAccount(cmd, pair, save)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also seal the pair in the local keystore")
	return cmd
}

func accountAuthCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "auth <alias>",
		Short: "Recover the pair registered under alias from the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			ctx := cmd.Context()
			alias := args[0]

			if _, err := pull(ctx, "~@"+alias); err != nil {
				return err
			}
			index := w.Graph.Values("~@" + alias)
			souls := make([]string, 0, len(index))
			for _, v := range index {
				if soul, ok := wire.LinkOf(v); ok {
					souls = append(souls, soul)
				}
			}
			slices.Sort(souls)
			for _, soul := range souls {
				if _, err := pull(ctx, soul); err != nil {
					return err
				}
			}

			pair, err := w.Accounts.Authenticate(ctx, alias, passphrase)
			if err != nil {
				return err
			}
			return reportAccount(cmd, pair, save)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "also seal the pair in the local keystore")
	return cmd
}

func reportAccount(cmd *cobra.Command, pair domain.KeyPair, save bool) error {
	if save {
		if err := w.KeyStore.SaveKeyPair(passphrase, pair); err != nil {
			return err
		}
	}
	fp, err := crypto.Fingerprint(pair.Pub)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pub: %s\nFingerprint: %s\n", pair.Pub, fp)
	return nil
}
