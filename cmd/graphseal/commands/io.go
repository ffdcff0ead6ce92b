package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"graphseal/internal/domain"
	"graphseal/internal/wire"
)

// loadPair returns the pair from --pair, or from the keystore with -p.
func loadPair() (domain.KeyPair, error) {
	if pairFile != "" {
		return readPairFile(pairFile)
	}
	if passphrase == "" {
		return domain.KeyPair{}, errors.New("passphrase required (-p) or --pair")
	}
	return w.Identity.LoadIdentity(passphrase)
}

func readPairFile(path string) (domain.KeyPair, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.KeyPair{}, err
	}
	var p domain.KeyPair
	if err := json.Unmarshal(b, &p); err != nil {
		return domain.KeyPair{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if p.Pub == "" && p.EPub == "" {
		return domain.KeyPair{}, fmt.Errorf("%s holds no key pair", path)
	}
	return p, nil
}

// haveSession reports whether a pair was supplied on the command line.
func haveSession() bool { return pairFile != "" || passphrase != "" }

// input returns arg, or stdin when arg is "-", parsed as JSON when it is.
func input(cmd *cobra.Command, arg string) (any, error) {
	if arg == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		arg = strings.TrimRight(string(b), "\r\n")
	}
	return wire.Parse(arg), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printValue prints strings as they are and everything else as JSON.
func printValue(cmd *cobra.Command, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	}
	return printJSON(cmd, v)
}
