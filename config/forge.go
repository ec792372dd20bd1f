package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/solanaforge/forge/errors"
)

// Config is the "forge" section of config.yaml.
type Config struct {
	// JSON-RPC endpoint of the cluster.
	RPC        string `yaml:"rpc,omitempty"`
	Commitment string `yaml:"commitment,omitempty"`
	// Reference to a solana-keygen keypair, e.g. "file:~/.config/solana/id.json".
	Keypair      Secret `yaml:"keypair,omitempty"`
	TokenProgram string `yaml:"token_program,omitempty"`
	// Run against an in-memory ledger instead of the RPC endpoint.
	Local bool `yaml:"local,omitempty"`
}

// Load reads the forge section of the config file, falling back to Defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := RequireConfig(Section, cfg, Defaults()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q, must be one of processed, confirmed, finalized", cfg.Commitment)
	}
	if _, err := cfg.GetTokenProgram(); err != nil {
		return err
	}
	if !cfg.Local && cfg.RPC == "" {
		return fmt.Errorf("rpc url is required unless running locally")
	}
	return nil
}

func (cfg *Config) GetTokenProgram() (solana.PublicKey, error) {
	if cfg.TokenProgram == "" {
		return solana.TokenProgramID, nil
	}
	tokenProgram, err := solana.PublicKeyFromBase58(cfg.TokenProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid token program %q: %v", cfg.TokenProgram, err)
	}
	return tokenProgram, nil
}

// LoadKeypair dereferences the keypair secret.
func (cfg *Config) LoadKeypair() (solana.PrivateKey, error) {
	value, err := cfg.Keypair.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load keypair: %w", errors.External(err))
	}
	if value == "" {
		return nil, fmt.Errorf("keypair reference %q loaded empty value", cfg.Keypair)
	}
	return ParseKeypair(value)
}

// ParseKeypair accepts a solana-keygen JSON byte array or a base58 encoded private key.
func ParseKeypair(value string) (solana.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(value), &ints); err != nil {
			return nil, fmt.Errorf("invalid keypair json: %v", err)
		}
		if len(ints) != 64 {
			return nil, fmt.Errorf("keypair must be 64 bytes, got %d", len(ints))
		}
		key := make(solana.PrivateKey, len(ints))
		for i, b := range ints {
			if b < 0 || b > 255 {
				return nil, fmt.Errorf("keypair byte %d out of range: %d", i, b)
			}
			key[i] = byte(b)
		}
		return key, nil
	}
	key, err := solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 keypair: %v", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("keypair must be 64 bytes, got %d", len(key))
	}
	return key, nil
}
