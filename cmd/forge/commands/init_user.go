package commands

import (
	"fmt"

	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/spf13/cobra"
)

func CmdInitUser() *cobra.Command {
	return &cobra.Command{
		Use:   "init-user",
		Short: "Register the keypair's owner with the issuance program.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			cli := setup.UnwrapClient(cmd.Context())
			owner, err := setup.LoadKeypair(cfg, cli)
			if err != nil {
				return err
			}
			registration, err := cli.InitializeUser(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("could not initialize user: %v", err)
			}
			fmt.Println(asJson(registration))
			return nil
		},
	}
}
