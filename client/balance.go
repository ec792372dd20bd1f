package client

import "github.com/solanaforge/forge"

type BalanceArgs struct {
	owner forge.Address
	mint  forge.Address
}

func (args *BalanceArgs) Owner() forge.Address {
	return args.owner
}

// Mint is the token to report; without one the native lamport balance is reported.
func (args *BalanceArgs) Mint() (forge.Address, bool) {
	return args.mint, args.mint != ""
}

func (args *BalanceArgs) SetMint(mint forge.Address) {
	args.mint = mint
}

func NewBalanceArgs(owner forge.Address, options ...GetBalanceOption) *BalanceArgs {
	args := &BalanceArgs{owner: owner}
	for _, option := range options {
		option(args)
	}
	return args
}

type GetBalanceOption func(*BalanceArgs)

func BalanceOptionMint(mint forge.Address) GetBalanceOption {
	return func(args *BalanceArgs) {
		args.mint = mint
	}
}

// Balance is an amount in the smallest unit, along with the decimals needed to display it.
type Balance struct {
	Amount   forge.AmountBlockchain `json:"amount"`
	Decimals uint8                  `json:"decimals"`
}

func (b Balance) Human() forge.AmountHumanReadable {
	return b.Amount.ToHuman(int32(b.Decimals))
}
