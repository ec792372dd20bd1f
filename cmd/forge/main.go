package main

import (
	"os"

	"github.com/solanaforge/forge/cmd/forge/commands"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/spf13/cobra"
)

func CmdForge() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "forge",
		Short:        "Register users and issue tokens with the issuance program",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			args, err := setup.ArgsFromCmd(cmd)
			if err != nil {
				return err
			}
			setup.ConfigureLogger(args)

			cfg, err := setup.LoadConfig(args)
			if err != nil {
				return err
			}
			cli, err := setup.NewClient(cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(setup.CreateContext(cfg, cli))
			return nil
		},
	}
	setup.AddArgs(cmd)

	cmd.AddCommand(commands.CmdAddress())
	cmd.AddCommand(commands.CmdInitUser())
	cmd.AddCommand(commands.CmdCreateToken())
	cmd.AddCommand(commands.CmdBalance())
	cmd.AddCommand(commands.CmdSimulate())

	return cmd
}

func main() {
	rootCmd := CmdForge()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
