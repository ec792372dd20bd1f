package config

import (
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	// HomeEnv overrides the directory searched last for config.yaml.
	HomeEnv = "FORGE_HOME"
	// ConfigEnv points at a config file directly.
	ConfigEnv = "FORGE_CONFIG"
	// Section of config.yaml holding the forge settings.
	Section = "forge"
)

const DefaultRPC = "http://127.0.0.1:8899"
const DefaultKeypair Secret = "file:~/.config/solana/id.json"

// HomeDir is $FORGE_HOME, or ~/.forge.
func HomeDir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return "/data"
	}
	return filepath.Join(userHomeDir, ".forge")
}

func Defaults() *Config {
	return &Config{
		RPC:          DefaultRPC,
		Commitment:   string(rpc.CommitmentConfirmed),
		Keypair:      DefaultKeypair,
		TokenProgram: solana.TokenProgramID.String(),
	}
}

// ApplyDefaults fills every unset field of cfg from defaults. Values set in
// the config file or on the command line are kept.
func (cfg *Config) ApplyDefaults(defaults *Config) {
	if defaults == nil {
		return
	}
	if cfg.RPC == "" {
		cfg.RPC = defaults.RPC
	}
	if cfg.Commitment == "" {
		cfg.Commitment = defaults.Commitment
	}
	if cfg.Keypair == "" {
		cfg.Keypair = defaults.Keypair
	}
	if cfg.TokenProgram == "" {
		cfg.TokenProgram = defaults.TokenProgram
	}
	// local has no unset state; either side can turn it on
	cfg.Local = cfg.Local || defaults.Local
}
