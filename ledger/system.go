package ledger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
)

// SystemProgram implements the subset of the system program that account
// allocation needs: CreateAccount, Transfer, Allocate and Assign.
type SystemProgram struct{}

var _ Program = &SystemProgram{}

func (p *SystemProgram) ProgramID() solana.PublicKey {
	return solana.SystemProgramID
}

func (p *SystemProgram) Execute(ctx *InvokeContext, data []byte) error {
	inst, err := system.DecodeInstruction(ctx.Accounts(), data)
	if err != nil {
		return errors.InvalidArgumentf("could not decode system instruction: %v", err)
	}
	switch ix := inst.Impl.(type) {
	case *system.CreateAccount:
		return p.createAccount(ctx, ix)
	case *system.Transfer:
		return p.transfer(ctx, ix)
	case *system.Allocate:
		return p.allocate(ctx, ix)
	case *system.Assign:
		return p.assign(ctx, ix)
	default:
		return errors.InvalidArgumentf("unsupported system instruction %T", inst.Impl)
	}
}

func (p *SystemProgram) createAccount(ctx *InvokeContext, ix *system.CreateAccount) error {
	if ix.Lamports == nil || ix.Space == nil || ix.Owner == nil {
		return errors.InvalidArgumentf("create account: missing parameters")
	}
	from := ix.GetFundingAccount().PublicKey
	to := ix.GetNewAccount().PublicKey
	if !ctx.IsSigner(from) {
		return errors.MissingSignerf("create account: funding account %s must sign", from)
	}
	if !ctx.IsSigner(to) {
		return errors.MissingSignerf("create account: new account %s must sign", to)
	}

	newAccount := ctx.Load(to)
	if newAccount.Exists() {
		return errors.Errorf(errors.AccountAlreadyInUse, "create account: account %s already in use", to)
	}
	funding := ctx.Load(from)
	if !funding.IsOwnedBy(solana.SystemProgramID) || len(funding.Data) > 0 {
		return errors.InvalidArgumentf("create account: funding account %s must be a system account without data", from)
	}
	if funding.Lamports < *ix.Lamports {
		return errors.Errorf(errors.InsufficientFunds, "create account: %s has %d lamports, needs %d", from, funding.Lamports, *ix.Lamports)
	}

	funding.Lamports -= *ix.Lamports
	newAccount.Lamports = *ix.Lamports
	newAccount.Data = make([]byte, *ix.Space)
	newAccount.Owner = *ix.Owner
	if err := ctx.Store(from, funding); err != nil {
		return err
	}
	return ctx.Store(to, newAccount)
}

func (p *SystemProgram) transfer(ctx *InvokeContext, ix *system.Transfer) error {
	if ix.Lamports == nil {
		return errors.InvalidArgumentf("transfer: missing lamports")
	}
	from := ix.GetFundingAccount().PublicKey
	to := ix.GetRecipientAccount().PublicKey
	if !ctx.IsSigner(from) {
		return errors.MissingSignerf("transfer: funding account %s must sign", from)
	}
	funding := ctx.Load(from)
	if !funding.IsOwnedBy(solana.SystemProgramID) {
		return errors.InvalidArgumentf("transfer: funding account %s must be owned by the system program", from)
	}
	if funding.Lamports < *ix.Lamports {
		return errors.Errorf(errors.InsufficientFunds, "transfer: %s has %d lamports, needs %d", from, funding.Lamports, *ix.Lamports)
	}
	funding.Lamports -= *ix.Lamports
	if err := ctx.Store(from, funding); err != nil {
		return err
	}
	recipient := ctx.Load(to)
	total, err := forge.CheckedAdd(recipient.Lamports, *ix.Lamports)
	if err != nil {
		return err
	}
	recipient.Lamports = total
	return ctx.Store(to, recipient)
}

func (p *SystemProgram) allocate(ctx *InvokeContext, ix *system.Allocate) error {
	if ix.Space == nil {
		return errors.InvalidArgumentf("allocate: missing space")
	}
	key := ix.GetNewAccount().PublicKey
	if !ctx.IsSigner(key) {
		return errors.MissingSignerf("allocate: account %s must sign", key)
	}
	acc := ctx.Load(key)
	if acc.Allocated() {
		return errors.Errorf(errors.AccountAlreadyInUse, "allocate: account %s already in use", key)
	}
	acc.Data = make([]byte, *ix.Space)
	return ctx.Store(key, acc)
}

func (p *SystemProgram) assign(ctx *InvokeContext, ix *system.Assign) error {
	if ix.Owner == nil {
		return errors.InvalidArgumentf("assign: missing owner")
	}
	key := ix.GetAssignedAccount().PublicKey
	if !ctx.IsSigner(key) {
		return errors.MissingSignerf("assign: account %s must sign", key)
	}
	acc := ctx.Load(key)
	if acc.Owner.Equals(*ix.Owner) {
		return nil
	}
	acc.Owner = *ix.Owner
	return ctx.Store(key, acc)
}
