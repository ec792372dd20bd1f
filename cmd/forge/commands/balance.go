package commands

import (
	"fmt"

	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/client"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/spf13/cobra"
)

func CmdBalance() *cobra.Command {
	var decimal bool
	var native bool
	cmd := &cobra.Command{
		Use:   "balance [mint] [owner]",
		Short: "Check the token balance of an owner. Reported as big integer, not accounting for any decimals.",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := setup.UnwrapClient(cmd.Context())
			options := []client.GetBalanceOption{}
			ownerIndex := 1
			if native || len(args) == 0 {
				ownerIndex = 0
			} else {
				mint := forge.Address(args[0])
				if err := forge.ValidateAddress(mint); err != nil {
					return fmt.Errorf("invalid mint: %v", err)
				}
				options = append(options, client.BalanceOptionMint(mint))
			}
			owner, err := inputAddressOrDerived(cmd, args, ownerIndex)
			if err != nil {
				return err
			}
			balanceArgs := client.NewBalanceArgs(forge.AddressFromPublicKey(owner), options...)
			balance, err := cli.FetchBalance(cmd.Context(), balanceArgs)
			if err != nil {
				return fmt.Errorf("could not fetch balance for address %s: %v", owner, err)
			}
			if decimal {
				fmt.Println(balance.Human().String())
			} else {
				fmt.Println(balance.Amount.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&decimal, "decimal", false, "Report balance as a decimal.")
	cmd.Flags().BoolVar(&native, "native", false, "Report the lamport balance; the first argument is the owner.")
	return cmd
}
