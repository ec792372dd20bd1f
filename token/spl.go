package token

import (
	"github.com/gagliardetto/solana-go"
	tokenprogram "github.com/gagliardetto/solana-go/programs/token"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
)

// minimum accounts per token instruction tag
var splAccounts = map[byte]int{
	7:  3, // MintTo
	18: 2, // InitializeAccount3
	20: 1, // InitializeMint2
}

// SPL is the ledger-resident token program. It implements the instructions
// token issuance relies on: InitializeMint2, InitializeAccount3 and MintTo.
type SPL struct {
	ID solana.PublicKey
}

var _ ledger.Program = &SPL{}

func NewSPL(programID solana.PublicKey) *SPL {
	return &SPL{ID: programID}
}

func (p *SPL) ProgramID() solana.PublicKey {
	return p.ID
}

func (p *SPL) Execute(ctx *ledger.InvokeContext, data []byte) error {
	if len(data) == 0 {
		return errors.InvalidArgumentf("empty token instruction")
	}
	minAccounts, ok := splAccounts[data[0]]
	if !ok {
		return errors.InvalidArgumentf("unsupported token instruction %d", data[0])
	}
	accounts := ctx.Accounts()
	if len(accounts) < minAccounts {
		return errors.InvalidArgumentf("token instruction %d needs %d accounts, got %d", data[0], minAccounts, len(accounts))
	}
	inst, err := tokenprogram.DecodeInstruction(accounts, data)
	if err != nil {
		return errors.InvalidArgumentf("could not decode token instruction: %v", err)
	}
	switch ix := inst.Impl.(type) {
	case *tokenprogram.InitializeMint2:
		return p.initializeMint(ctx, accounts[0].PublicKey, ix)
	case *tokenprogram.InitializeAccount3:
		return p.initializeAccount(ctx, accounts[0].PublicKey, accounts[1].PublicKey, ix)
	case *tokenprogram.MintTo:
		return p.mintTo(ctx, accounts[0].PublicKey, accounts[1].PublicKey, accounts[2].PublicKey, ix)
	default:
		return errors.InvalidArgumentf("unsupported token instruction %T", inst.Impl)
	}
}

// loadOwned loads an account that must belong to this program and have the given size.
func (p *SPL) loadOwned(ctx *ledger.InvokeContext, key solana.PublicKey, size int) (*ledger.Account, error) {
	acc := ctx.Load(key)
	if !acc.Exists() {
		return nil, errors.Errorf(errors.AccountNotFound, "account %s does not exist", key)
	}
	if !acc.IsOwnedBy(p.ID) {
		return nil, errors.Errorf(errors.InvalidAccountOwner, "account %s is owned by %s, not %s", key, acc.Owner, p.ID)
	}
	if len(acc.Data) != size {
		return nil, errors.InvalidAccountDataf("account %s is %d bytes, expected %d", key, len(acc.Data), size)
	}
	if !ctx.Rent().IsExempt(acc.Lamports, len(acc.Data)) {
		return nil, errors.Errorf(errors.NotRentExempt, "account %s is not rent exempt", key)
	}
	return acc, nil
}

func (p *SPL) initializeMint(ctx *ledger.InvokeContext, mintKey solana.PublicKey, ix *tokenprogram.InitializeMint2) error {
	if ix.Decimals == nil || ix.MintAuthority == nil {
		return errors.InvalidArgumentf("initialize mint: missing parameters")
	}
	acc, err := p.loadOwned(ctx, mintKey, MintSize)
	if err != nil {
		return err
	}
	mint, err := DecodeMint(acc.Data)
	if err != nil {
		return errors.InvalidAccountDataf("initialize mint: %v", err)
	}
	if mint.IsInitialized {
		return errors.AlreadyInitializedf("mint %s is already initialized", mintKey)
	}
	authority := *ix.MintAuthority
	mint = &Mint{
		MintAuthority:   &authority,
		Decimals:        *ix.Decimals,
		IsInitialized:   true,
		FreezeAuthority: ix.FreezeAuthority,
	}
	if acc.Data, err = mint.Encode(); err != nil {
		return errors.InvalidAccountDataf("initialize mint: %v", err)
	}
	ctx.Log("Instruction: InitializeMint2")
	return ctx.Store(mintKey, acc)
}

func (p *SPL) initializeAccount(ctx *ledger.InvokeContext, accountKey, mintKey solana.PublicKey, ix *tokenprogram.InitializeAccount3) error {
	if ix.Owner == nil {
		return errors.InvalidArgumentf("initialize account: missing owner")
	}
	acc, err := p.loadOwned(ctx, accountKey, AccountSize)
	if err != nil {
		return err
	}
	existing, err := DecodeAccount(acc.Data)
	if err != nil {
		return errors.InvalidAccountDataf("initialize account: %v", err)
	}
	if existing.State != Uninitialized {
		return errors.AlreadyInitializedf("token account %s is already initialized", accountKey)
	}
	mintAcc, err := p.loadOwned(ctx, mintKey, MintSize)
	if err != nil {
		return err
	}
	mint, err := DecodeMint(mintAcc.Data)
	if err != nil || !mint.IsInitialized {
		return errors.InvalidAccountDataf("initialize account: mint %s is not initialized", mintKey)
	}
	holding := &Account{
		Mint:  mintKey,
		Owner: *ix.Owner,
		State: Initialized,
	}
	if acc.Data, err = holding.Encode(); err != nil {
		return errors.InvalidAccountDataf("initialize account: %v", err)
	}
	ctx.Log("Instruction: InitializeAccount3")
	return ctx.Store(accountKey, acc)
}

func (p *SPL) mintTo(ctx *ledger.InvokeContext, mintKey, destinationKey, authorityKey solana.PublicKey, ix *tokenprogram.MintTo) error {
	if ix.Amount == nil {
		return errors.InvalidArgumentf("mint to: missing amount")
	}
	mintAcc, err := p.loadOwned(ctx, mintKey, MintSize)
	if err != nil {
		return err
	}
	mint, err := DecodeMint(mintAcc.Data)
	if err != nil || !mint.IsInitialized {
		return errors.InvalidAccountDataf("mint to: mint %s is not initialized", mintKey)
	}
	if mint.MintAuthority == nil {
		return errors.Unauthorizedf("mint %s has a fixed supply", mintKey)
	}
	if !mint.MintAuthority.Equals(authorityKey) {
		return errors.Unauthorizedf("%s is not the mint authority of %s", authorityKey, mintKey)
	}
	if !ctx.IsSigner(authorityKey) {
		return errors.MissingSignerf("mint authority %s must sign", authorityKey)
	}

	destAcc, err := p.loadOwned(ctx, destinationKey, AccountSize)
	if err != nil {
		return err
	}
	dest, err := DecodeAccount(destAcc.Data)
	if err != nil || dest.State == Uninitialized {
		return errors.InvalidAccountDataf("mint to: token account %s is not initialized", destinationKey)
	}
	if dest.State == Frozen {
		return errors.InvalidAccountDataf("mint to: token account %s is frozen", destinationKey)
	}
	if !dest.Mint.Equals(mintKey) {
		return errors.InvalidAccountDataf("mint to: token account %s holds %s, not %s", destinationKey, dest.Mint, mintKey)
	}

	if mint.Supply, err = forge.CheckedAdd(mint.Supply, *ix.Amount); err != nil {
		return err
	}
	if dest.Amount, err = forge.CheckedAdd(dest.Amount, *ix.Amount); err != nil {
		return err
	}
	if mintAcc.Data, err = mint.Encode(); err != nil {
		return errors.InvalidAccountDataf("mint to: %v", err)
	}
	if destAcc.Data, err = dest.Encode(); err != nil {
		return errors.InvalidAccountDataf("mint to: %v", err)
	}
	ctx.Log("Instruction: MintTo")
	if err := ctx.Store(mintKey, mintAcc); err != nil {
		return err
	}
	return ctx.Store(destinationKey, destAcc)
}

// Deploy registers the token programs (classic, Token-2022 and associated token account) on a runtime.
func Deploy(rt *ledger.Runtime) {
	rt.Register(
		NewSPL(solana.TokenProgramID),
		NewSPL(solana.Token2022ProgramID),
		&AssociatedProgram{},
	)
}
