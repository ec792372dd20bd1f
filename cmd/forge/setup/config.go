package setup

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"github.com/solanaforge/forge/client"
	"github.com/solanaforge/forge/config"
)

type ContextKey string

const ContextConfig ContextKey = "config"
const ContextClient ContextKey = "client"

// Lamports granted to the keypair on a local ledger so it can pay fees and rent.
const LocalAirdrop uint64 = 100 * 1_000_000_000

func WrapConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ContextConfig, cfg)
}

func WrapClient(ctx context.Context, cli *client.Client) context.Context {
	return context.WithValue(ctx, ContextClient, cli)
}

func UnwrapConfig(ctx context.Context) *config.Config {
	return ctx.Value(ContextConfig).(*config.Config)
}

func UnwrapClient(ctx context.Context) *client.Client {
	return ctx.Value(ContextClient).(*client.Client)
}

// NewClient connects to the configured RPC node, or creates an in-memory ledger.
func NewClient(cfg *config.Config) (*client.Client, error) {
	tokenProgram, err := cfg.GetTokenProgram()
	if err != nil {
		return nil, err
	}
	var backend client.Backend
	if cfg.Local {
		backend = client.NewLocalBackend()
	} else {
		backend = client.NewRPCBackend(cfg.RPC, rpc.CommitmentType(cfg.Commitment))
	}
	logrus.WithFields(logrus.Fields{
		"rpc":           cfg.RPC,
		"local":         cfg.Local,
		"token_program": tokenProgram.String(),
	}).Info("backend")
	return client.NewClient(backend, client.WithTokenProgram(tokenProgram)), nil
}

// LoadKeypair loads the signing keypair, funding it first when the ledger is local.
func LoadKeypair(cfg *config.Config, cli *client.Client) (solana.PrivateKey, error) {
	key, err := cfg.LoadKeypair()
	if err != nil {
		return nil, err
	}
	if local, ok := cli.Backend.(*client.LocalBackend); ok {
		if err := local.Runtime.Airdrop(key.PublicKey(), LocalAirdrop); err != nil {
			return nil, err
		}
	}
	return key, nil
}

func CreateContext(cfg *config.Config, cli *client.Client) context.Context {
	ctx := context.Background()
	ctx = WrapConfig(ctx, cfg)
	ctx = WrapClient(ctx, cli)
	return ctx
}
