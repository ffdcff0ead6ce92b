package commands

import (
	"github.com/spf13/cobra"

	"graphseal/internal/app"
)

var (
	configPath string
	home       string
	passphrase string
	pairFile   string
	relayURL   string
	logLevel   string

	w *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphseal",
		Short:         "Signatures, encryption and write certificates for a decentralized graph",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if home != "" {
				cfg.Home = home
			}
			if relayURL != "" {
				cfg.RelayURL = relayURL
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			cfg.LogWriter = cmd.ErrOrStderr()

			w, err = app.NewWire(cfg)
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&home, "home", "", "keystore dir (default ~/.graphseal)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keystore")
	pf.StringVar(&pairFile, "pair", "", "read the key pair from this JSON file instead of the keystore")
	pf.StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		initCmd(), pairCmd(), fingerprintCmd(),
		signCmd(), verifyCmd(),
		encryptCmd(), decryptCmd(), secretCmd(),
		certifyCmd(),
		workCmd(), hashCmd(), addressCmd(),
		checkCmd(), putCmd(), getCmd(),
		accountCmd(),
	)
	return root
}
