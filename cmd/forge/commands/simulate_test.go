package commands_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/cmd/forge/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	vectors := []struct {
		tokenProgram solana.PublicKey
		decimals     uint8
		supply       uint64
		balance      string
	}{
		{solana.TokenProgramID, 2, 500, "50000"},
		{solana.TokenProgramID, 0, 7, "7"},
		{solana.Token2022ProgramID, 9, 3, "3000000000"},
	}
	for _, v := range vectors {
		cmd := &cobra.Command{}
		cmd.SetContext(context.Background())
		report, err := commands.Simulate(cmd, v.tokenProgram, v.decimals, v.supply)
		require.NoError(t, err)
		require.Equal(t, v.balance, report.Balance.Amount.String())
		require.Equal(t, v.balance, report.Token.Supply.String())
		require.EqualValues(t, report.Payer, report.Registration.Owner)
		require.NotEmpty(t, report.Token.Logs)

		bz, err := json.Marshal(report)
		require.NoError(t, err)
		require.Contains(t, string(bz), `"token_account"`)
	}
}

func TestSimulateOverflow(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	_, err := commands.Simulate(cmd, solana.TokenProgramID, 9, 18446744074)
	require.ErrorContains(t, err, "SupplyOverflow")
}
