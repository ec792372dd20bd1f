package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge"
)

// Instruction tags of the associated token account program.
const (
	AssociatedCreate           byte = 0
	AssociatedCreateIdempotent byte = 1
)

// DeriveAssociatedTokenAddress returns the associated token account (ATA) of an owner for a mint,
// along with its bump seed.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			owner[:],
			tokenProgram[:],
			mint[:],
		},
		solana.SPLAssociatedTokenAccountProgramID,
	)
}

// FindAssociatedTokenAddress returns the associated token account (ATA) for a given account and token
func FindAssociatedTokenAddress(addr forge.Address, contract forge.Address, tokenProgram solana.PublicKey) (forge.Address, error) {
	owner, err := addr.PublicKey()
	if err != nil {
		return "", err
	}
	mint, err := contract.PublicKey()
	if err != nil {
		return "", err
	}
	associatedAddr, _, err := DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return "", err
	}
	return forge.AddressFromPublicKey(associatedAddr), nil
}

// NewCreateAssociatedInstruction creates the associated token account of wallet for mint, paid by payer.
// The idempotent variant succeeds when the account already exists.
func NewCreateAssociatedInstruction(payer, wallet, mint, tokenProgram solana.PublicKey, idempotent bool) (solana.Instruction, error) {
	associated, _, err := DeriveAssociatedTokenAddress(wallet, mint, tokenProgram)
	if err != nil {
		return nil, err
	}
	tag := AssociatedCreate
	if idempotent {
		tag = AssociatedCreateIdempotent
	}
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: associated, IsWritable: true},
			{PublicKey: wallet},
			{PublicKey: mint},
			{PublicKey: solana.SystemProgramID},
			{PublicKey: tokenProgram},
		},
		[]byte{tag},
	), nil
}
