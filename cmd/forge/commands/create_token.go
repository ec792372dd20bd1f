package commands

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/client"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/solanaforge/forge/config"
	"github.com/spf13/cobra"
)

func CmdCreateToken() *cobra.Command {
	var decimals uint8
	var supply uint64
	var tokenProgram string
	var mintRef string
	cmd := &cobra.Command{
		Use:   "create-token",
		Short: "Create a token and mint its initial supply to the keypair's associated token account.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			cli := setup.UnwrapClient(cmd.Context())
			if tokenProgram != "" {
				id, err := solana.PublicKeyFromBase58(tokenProgram)
				if err != nil {
					return fmt.Errorf("invalid token program: %v", err)
				}
				client.WithTokenProgram(id)(cli)
			}
			payer, err := setup.LoadKeypair(cfg, cli)
			if err != nil {
				return err
			}
			var created *client.TokenCreation
			if mintRef != "" {
				value, err := config.Secret(mintRef).Load()
				if err != nil {
					return fmt.Errorf("could not load mint keypair: %v", err)
				}
				mint, err := config.ParseKeypair(value)
				if err != nil {
					return err
				}
				created, err = cli.CreateTokenWithMint(cmd.Context(), payer, mint, decimals, supply)
				if err != nil {
					return fmt.Errorf("could not create token: %v", err)
				}
			} else {
				created, err = cli.CreateToken(cmd.Context(), payer, decimals, supply)
				if err != nil {
					return fmt.Errorf("could not create token: %v", err)
				}
			}
			fmt.Println(asJson(created))
			return nil
		},
	}
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "Decimals of the new token.")
	cmd.Flags().Uint64Var(&supply, "supply", 0, "Initial supply in whole tokens, scaled by 10^decimals.")
	cmd.Flags().StringVar(&tokenProgram, "token-program", "", "Token program to use. Overrides the config file.")
	cmd.Flags().StringVar(&mintRef, "mint", "", "Secret reference for the mint keypair. A new one is generated by default.")
	return cmd
}
