package commands

import (
	"github.com/spf13/cobra"

	"graphseal/internal/crypto"
)

func workCmd() *cobra.Command {
	var (
		salt, name, encoding string
		iterations, length   int
	)
	cmd := &cobra.Command{
		Use:   "work <data|->",
		Short: "Stretch data with PBKDF2 (or digest it with a SHA function)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := w.Suite.Work(cmd.Context(), data, salt, crypto.WorkOptions{
				Name:       name,
				Iterations: iterations,
				Length:     length,
				Encoding:   crypto.Encoding(encoding),
			})
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&salt, "salt", "", "salt (default: 9 random bytes)")
	f.StringVar(&name, "name", "", "PBKDF2 (default), SHA-256, SHA-384, SHA-512 or SHA-1")
	f.IntVar(&iterations, "iterations", 0, "PBKDF2 iterations (default from config)")
	f.IntVar(&length, "length", 0, "PBKDF2 output bytes (default 32)")
	f.StringVar(&encoding, "encoding", "", "output encoding: base64 (default), base64url or hex")
	return cmd
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <data|->",
		Short: "Print the base64 SHA-256 of data, the name content-addressed souls use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := w.Suite.Hash(cmd.Context(), data)
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
}

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address <data|->",
		Short: "Print the CIDv1 content address of data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := input(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := crypto.ContentAddress(data)
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
}
