package commands

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/cmd/forge/setup"
	"github.com/spf13/cobra"
)

// inputAddressOrDerived returns the address argument at index i, or the configured keypair's address.
func inputAddressOrDerived(cmd *cobra.Command, args []string, i int) (solana.PublicKey, error) {
	if len(args) > i {
		if err := forge.ValidateAddress(forge.Address(args[i])); err != nil {
			return solana.PublicKey{}, err
		}
		return forge.Address(args[i]).PublicKey()
	}
	cfg := setup.UnwrapConfig(cmd.Context())
	key, err := cfg.LoadKeypair()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("must provide an address as input, or configure a keypair for it to be derived: %v", err)
	}
	return key.PublicKey(), nil
}

func asJson(data any) string {
	bz, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(bz)
}
