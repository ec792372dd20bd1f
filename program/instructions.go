package program

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/token"
)

// NewInitializeUserInstruction registers user, who signs and pays for the record.
func NewInitializeUserInstruction(user solana.PublicKey) (solana.Instruction, error) {
	userAccount, _, err := FindUserAddress(user)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			{PublicKey: userAccount, IsWritable: true},
			{PublicKey: user, IsWritable: true, IsSigner: true},
			{PublicKey: solana.SystemProgramID},
		},
		EncodeInitializeUser(),
	), nil
}

// NewCreateTokenInstruction creates the mint (a fresh keypair that must sign) and
// mints the initial supply to payer's associated token account.
func NewCreateTokenInstruction(payer, mint, tokenProgram solana.PublicKey, args CreateTokenArgs) (solana.Instruction, error) {
	tokenAccount, _, err := token.DeriveAssociatedTokenAddress(payer, mint, tokenProgram)
	if err != nil {
		return nil, err
	}
	data, err := EncodeCreateToken(args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		solana.AccountMetaSlice{
			{PublicKey: mint, IsWritable: true, IsSigner: true},
			{PublicKey: tokenAccount, IsWritable: true},
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: tokenProgram},
			{PublicKey: solana.SPLAssociatedTokenAccountProgramID},
			{PublicKey: solana.SystemProgramID},
		},
		data,
	), nil
}
