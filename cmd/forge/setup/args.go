package setup

import (
	"fmt"
	"os"

	"github.com/solanaforge/forge/config"
	"github.com/spf13/cobra"
)

type Args struct {
	ConfigPath     string
	Rpc            string
	Keypair        config.Secret
	Local          bool
	VerbosityCount int
}

func AddArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", fmt.Sprintf("Path to config.yaml (may set %s env var).", config.ConfigEnv))
	cmd.PersistentFlags().String("rpc", "", "RPC url to use. Overrides the config file.")
	cmd.PersistentFlags().String("keypair", "", fmt.Sprintf("Secret reference for the signing keypair (default %s).", config.DefaultKeypair))
	cmd.PersistentFlags().Bool("local", false, "Run against a fresh in-memory ledger instead of an RPC node.")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func ArgsFromCmd(cmd *cobra.Command) (*Args, error) {
	configPath, _ := cmd.Flags().GetString("config")
	rpc, _ := cmd.Flags().GetString("rpc")
	keypair, _ := cmd.Flags().GetString("keypair")
	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return nil, err
	}
	count, _ := cmd.Flags().GetCount("verbose")
	if keypair != "" && !config.HasTypePrefix(keypair) {
		return nil, fmt.Errorf("keypair must not be passed directly on command, instead you should use a reference (default is %s)", config.DefaultKeypair)
	}
	return &Args{
		ConfigPath:     configPath,
		Rpc:            rpc,
		Keypair:        config.Secret(keypair),
		Local:          local,
		VerbosityCount: count,
	}, nil
}

// LoadConfig reads the config file and applies the command line overrides.
func LoadConfig(args *Args) (*config.Config, error) {
	if args.ConfigPath != "" {
		_ = os.Setenv(config.ConfigEnv, args.ConfigPath)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Rpc != "" {
		cfg.RPC = args.Rpc
	}
	if args.Keypair != "" {
		cfg.Keypair = args.Keypair
	}
	if args.Local {
		cfg.Local = true
	}
	return cfg, cfg.Validate()
}

func ConfigureLogger(args *Args) {
	level := config.VerbosityLevel(args.VerbosityCount)
	if level == "" && os.Getenv(config.LogLevelEnv) == "" {
		level = "warn"
	}
	config.ConfigureLogger(level)
}
