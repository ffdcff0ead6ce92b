package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graphseal/internal/certify"
	"graphseal/internal/lex"
)

func certifyCmd() *cobra.Command {
	var (
		to, read          string
		expires           time.Duration
		readBlock, wBlock string
	)
	cmd := &cobra.Command{
		Use:   "certify --to <certificants> <write-policy>",
		Short: "Issue a certificate letting others write into your graph",
		Long: `Issue a certificate signed by your pair and print its packed form.

--to is "*", a comma-separated list of public keys or a JSON array.
write-policy is a LEX rule or list of rules as JSON, for example
'{"#":{"*":"inbox"},"+":"*"}', or a plain path that must match exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := loadPair()
			if err != nil {
				return err
			}
			certificants, err := parseCertificants(to)
			if err != nil {
				return err
			}
			var policy certify.Policy
			if policy.Write, err = parsePolicy(args[0]); err != nil {
				return err
			}
			if read != "" {
				if policy.Read, err = parsePolicy(read); err != nil {
					return err
				}
			}

			opts := certify.IssueOptions{}
			if expires > 0 {
				opts.Expiry = w.Clock.Now() + float64(expires.Milliseconds())
			}
			if readBlock != "" {
				opts.ReadBlock = readBlock
			}
			if wBlock != "" {
				opts.WriteBlock = wBlock
			}

			out, err := w.Issuer.IssuePacked(cmd.Context(), certificants, policy, pair, opts)
			if err != nil {
				return err
			}
			return printValue(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&to, "to", "", `certificants: "*", comma-separated keys or a JSON array`)
	f.StringVar(&read, "read", "", "read policy, same syntax as write-policy")
	f.DurationVar(&expires, "expires", 0, "validity from now, e.g. 720h (default: no expiry)")
	f.StringVar(&readBlock, "read-block", "", "soul or key of a read block list")
	f.StringVar(&wBlock, "write-block", "", "soul or key of a write block list")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parseCertificants(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("parse certificants: %w", err)
		}
		return out, nil
	}
	return strings.Split(s, ","), nil
}

func parsePolicy(s string) (lex.Policy, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, `"`) {
		return lex.Policy{{Text: lex.Exact(s)}}, nil
	}
	var p lex.Policy
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return p, nil
}
