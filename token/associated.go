package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
)

// AssociatedProgram is the ledger-resident associated token account program.
// Accounts: payer (w, s), associated account (w), wallet, mint, system program, token program.
type AssociatedProgram struct{}

var _ ledger.Program = &AssociatedProgram{}

func (p *AssociatedProgram) ProgramID() solana.PublicKey {
	return solana.SPLAssociatedTokenAccountProgramID
}

func (p *AssociatedProgram) Execute(ctx *ledger.InvokeContext, data []byte) error {
	idempotent := false
	if len(data) > 0 {
		switch data[0] {
		case AssociatedCreate:
		case AssociatedCreateIdempotent:
			idempotent = true
		default:
			return errors.InvalidArgumentf("unsupported associated token instruction %d", data[0])
		}
	}
	accounts := ctx.Accounts()
	if len(accounts) < 6 {
		return errors.InvalidArgumentf("associated token instruction needs 6 accounts, got %d", len(accounts))
	}
	payer := accounts[0].PublicKey
	associated := accounts[1].PublicKey
	wallet := accounts[2].PublicKey
	mint := accounts[3].PublicKey
	tokenProgram := accounts[5].PublicKey

	expected, bump, err := DeriveAssociatedTokenAddress(wallet, mint, tokenProgram)
	if err != nil {
		return errors.Errorf(errors.InvalidAddress, "could not derive associated token account: %v", err)
	}
	if !expected.Equals(associated) {
		return errors.Errorf(errors.InvalidAddress, "associated token account for %s and %s is %s, not %s", wallet, mint, expected, associated)
	}

	existing := ctx.Load(associated)
	if existing.Allocated() {
		if !idempotent {
			return errors.Errorf(errors.AccountAlreadyInUse, "associated token account %s already exists", associated)
		}
		return p.checkExisting(ctx, existing, associated, wallet, mint, tokenProgram)
	}

	ctx.Log("Create")
	seeds := [][]byte{wallet[:], tokenProgram[:], mint[:], {bump}}
	required := ctx.Rent().MinimumBalance(AccountSize)
	if existing.Lamports == 0 {
		create := system.NewCreateAccountInstruction(required, AccountSize, tokenProgram, payer, associated).Build()
		if err := ctx.InvokeSigned(create, seeds); err != nil {
			return err
		}
	} else {
		// lamports were sent to the address ahead of time: top up, then claim it
		if existing.Lamports < required {
			topUp := system.NewTransferInstruction(required-existing.Lamports, payer, associated).Build()
			if err := ctx.Invoke(topUp); err != nil {
				return err
			}
		}
		if err := ctx.InvokeSigned(system.NewAllocateInstruction(AccountSize, associated).Build(), seeds); err != nil {
			return err
		}
		if err := ctx.InvokeSigned(system.NewAssignInstruction(tokenProgram, associated).Build(), seeds); err != nil {
			return err
		}
	}
	ctx.Log("Initialize the associated token account")
	return ctx.Invoke(Generic{ID: tokenProgram}.InitializeAccount(associated, mint, wallet))
}

// An idempotent create passes only if the existing account is the holding account it would have created.
func (p *AssociatedProgram) checkExisting(ctx *ledger.InvokeContext, existing *ledger.Account, associated, wallet, mint, tokenProgram solana.PublicKey) error {
	if !existing.IsOwnedBy(tokenProgram) {
		return errors.Errorf(errors.InvalidAccountOwner, "associated token account %s is owned by %s", associated, existing.Owner)
	}
	holding, err := DecodeAccount(existing.Data)
	if err != nil || holding.State == Uninitialized {
		return errors.InvalidAccountDataf("associated token account %s is not an initialized token account", associated)
	}
	if !holding.Owner.Equals(wallet) {
		return errors.Errorf(errors.InvalidAccountOwner, "associated token account %s belongs to %s, not %s", associated, holding.Owner, wallet)
	}
	if !holding.Mint.Equals(mint) {
		return errors.InvalidAccountDataf("associated token account %s holds %s, not %s", associated, holding.Mint, mint)
	}
	ctx.Log("Associated token account %s already exists", associated)
	return nil
}
