package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/client"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/spf13/cobra"
)

type SimulationReport struct {
	Payer        string                `json:"payer"`
	Registration *client.Registration  `json:"registration"`
	Token        *client.TokenCreation `json:"token"`
	Balance      *client.Balance       `json:"balance"`
}

// Simulate registers a fresh payer and creates a token on an in-memory ledger.
func Simulate(cmd *cobra.Command, tokenProgram solana.PublicKey, decimals uint8, supply uint64) (*SimulationReport, error) {
	backend := client.NewLocalBackend()
	cli := client.NewClient(backend, client.WithTokenProgram(tokenProgram))
	payer, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	if err := backend.Runtime.Airdrop(payer.PublicKey(), setup.LocalAirdrop); err != nil {
		return nil, err
	}
	registration, err := cli.InitializeUser(cmd.Context(), payer)
	if err != nil {
		return nil, fmt.Errorf("could not initialize user: %w", err)
	}
	created, err := cli.CreateToken(cmd.Context(), payer, decimals, supply)
	if err != nil {
		return nil, fmt.Errorf("could not create token: %w", err)
	}
	balance, err := cli.FetchBalance(cmd.Context(), client.NewBalanceArgs(registration.Owner, client.BalanceOptionMint(created.Mint)))
	if err != nil {
		return nil, err
	}
	return &SimulationReport{
		Payer:        payer.PublicKey().String(),
		Registration: registration,
		Token:        created,
		Balance:      balance,
	}, nil
}

func CmdSimulate() *cobra.Command {
	var decimals uint8
	var supply uint64
	var tokenProgram string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Register a user and create a token on a fresh in-memory ledger, printing results and program logs.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := solana.TokenProgramID
			if tokenProgram != "" {
				var err error
				id, err = solana.PublicKeyFromBase58(tokenProgram)
				if err != nil {
					return fmt.Errorf("invalid token program: %v", err)
				}
			}
			report, err := Simulate(cmd, id, decimals, supply)
			if err != nil {
				return err
			}
			fmt.Println(asJson(report))
			return nil
		},
	}
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "Decimals of the new token.")
	cmd.Flags().Uint64Var(&supply, "supply", 1, "Initial supply in whole tokens.")
	cmd.Flags().StringVar(&tokenProgram, "token-program", "", "Token program to use.")
	return cmd
}
