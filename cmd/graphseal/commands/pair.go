package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
	"graphseal/internal/domain"
)

func pairCmd() *cobra.Command {
	var (
		seed, mnemonic, deriveFrom string
		newMnemonic, public        bool
	)
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Print a random, seeded or derived key pair as JSON",
		Long: `Print a key pair as JSON.

Without flags the pair is random. --seed or --mnemonic make it deterministic.
--derive-from offsets an existing pair ("keystore" or a JSON file) by the
seed; with --public only its public halves are used, and the result matches
the public halves of the privately derived pair.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if newMnemonic {
				if mnemonic != "" {
					return fmt.Errorf("use either --mnemonic or --new-mnemonic")
				}
				mn, err := crypto.NewMnemonic()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Mnemonic: %s\n", mn)
				mnemonic = mn
			}
			s, err := seedBytes(seed, mnemonic)
			if err != nil {
				return err
			}
			opts := crypto.PairOptions{Seed: s}

			if deriveFrom != "" {
				if len(s) == 0 {
					return fmt.Errorf("--derive-from needs --seed or --mnemonic")
				}
				base, err := pairFrom(deriveFrom)
				if err != nil {
					return err
				}
				if public {
					opts.Pub, opts.EPub = base.Pub, base.EPub
				} else {
					opts.Priv, opts.EPriv = base.Priv, base.EPriv
				}
			}

			pair, err := w.Suite.Pair(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if public {
				pair = pair.Public()
			}
			return printJSON(cmd, pair)
		},
	}
	f := cmd.Flags()
	f.StringVar(&seed, "seed", "", "seed for deterministic derivation")
	f.StringVar(&mnemonic, "mnemonic", "", "BIP-39 phrase used as the seed")
	f.BoolVar(&newMnemonic, "new-mnemonic", false, "generate a BIP-39 phrase (printed to stderr) and use it")
	f.StringVar(&deriveFrom, "derive-from", "", `base pair: "keystore" or a JSON file`)
	f.BoolVar(&public, "public", false, "derive from the base pair's public keys only")
	return cmd
}

func pairFrom(src string) (crypto.PairOptions, error) {
	load := loadPair
	if src != "keystore" {
		load = func() (domain.KeyPair, error) { return readPairFile(src) }
	}
	kp, err := load()
	if err != nil {
		return crypto.PairOptions{}, err
	}
	return crypto.PairOptions{Pub: kp.Pub, EPub: kp.EPub, Priv: kp.Priv, EPriv: kp.EPriv}, nil
}
