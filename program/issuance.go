package program

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
	"github.com/solanaforge/forge/token"
)

// Tokens accept at most 9 decimals.
const MaxDecimals = 9

// Issuance is the token issuance program: it registers users and creates
// tokens with an initial supply minted to the creator.
type Issuance struct{}

var _ ledger.Program = &Issuance{}

// Deploy registers the issuance program, and the token programs it calls, on a runtime.
func Deploy(rt *ledger.Runtime) {
	token.Deploy(rt)
	rt.Register(&Issuance{})
}

func (p *Issuance) ProgramID() solana.PublicKey {
	return ProgramID
}

func (p *Issuance) Execute(ctx *ledger.InvokeContext, data []byte) error {
	if len(data) < DiscriminatorSize {
		return errors.InvalidArgumentf("instruction data is %d bytes, missing discriminator", len(data))
	}
	switch {
	case bytes.Equal(data[:DiscriminatorSize], InitializeUserDiscriminator[:]):
		ctx.Log("Instruction: InitializeUser")
		return p.InitializeUser(ctx)
	case bytes.Equal(data[:DiscriminatorSize], CreateTokenDiscriminator[:]):
		args, err := DecodeCreateTokenArgs(data[DiscriminatorSize:])
		if err != nil {
			return err
		}
		ctx.Log("Instruction: CreateToken")
		return p.CreateToken(ctx, args)
	default:
		return errors.InvalidArgumentf("unknown instruction %x", data[:DiscriminatorSize])
	}
}

// InitializeUser creates the caller's user record.
// Accounts: user_account (w), user (w, s), system_program.
func (p *Issuance) InitializeUser(ctx *ledger.InvokeContext) error {
	metas := ctx.Accounts()
	if len(metas) < 3 {
		return errors.InvalidArgumentf("expected 3 accounts, got %d", len(metas))
	}
	user := metas[1].PublicKey
	userAddress, bump, err := FindUserAddress(user)
	if err != nil {
		return errors.Errorf(errors.InvalidAddress, "could not derive user account: %v", err)
	}
	accounts, err := Validate(ctx,
		Account("user_account", Mut, Address(userAddress)),
		Account("user", Signer, Mut),
		Account("system_program", Address(solana.SystemProgramID), Executable),
	)
	if err != nil {
		return err
	}
	userAccount := accounts["user_account"]
	if ctx.Load(userAccount).Exists() {
		return errors.AlreadyInitializedf("user account %s already initialized for %s", userAccount, user)
	}

	create := system.NewCreateAccountInstruction(
		ctx.Rent().MinimumBalance(UserAccountSize),
		UserAccountSize,
		ProgramID,
		user,
		userAccount,
	).Build()
	if err := ctx.InvokeSigned(create, [][]byte{[]byte(UserSeed), user[:], {bump}}); err != nil {
		if errors.Is(err, errors.AccountAlreadyInUse) {
			return errors.AlreadyInitializedf("user account %s already initialized for %s", userAccount, user)
		}
		return err
	}

	acc := ctx.Load(userAccount)
	record := &UserAccount{Authority: user}
	if acc.Data, err = record.Encode(); err != nil {
		return errors.InvalidAccountDataf("could not encode user account: %v", err)
	}
	if err := ctx.Store(userAccount, acc); err != nil {
		return err
	}
	ctx.Log("User account initialized for: %s", user)
	return nil
}

// CreateToken creates a mint with payer as its authority, creates payer's
// associated token account if needed, and mints initial_supply * 10^decimals into it.
// Accounts: mint (w, s), token_account (w), payer (w, s), token_program,
// associated_token_program, system_program.
func (p *Issuance) CreateToken(ctx *ledger.InvokeContext, args CreateTokenArgs) error {
	metas := ctx.Accounts()
	if len(metas) < 6 {
		return errors.InvalidArgumentf("expected 6 accounts, got %d", len(metas))
	}
	mint := metas[0].PublicKey
	payer := metas[2].PublicKey
	tokenProgram := metas[3].PublicKey
	associatedAddress, _, err := token.DeriveAssociatedTokenAddress(payer, mint, tokenProgram)
	if err != nil {
		return errors.Errorf(errors.InvalidAddress, "could not derive token account: %v", err)
	}
	accounts, err := Validate(ctx,
		Account("mint", Signer, Mut),
		Account("token_account", Mut, Address(associatedAddress), OwnedBy(tokenProgram), RentExempt),
		Account("payer", Signer, Mut),
		Account("token_program", OneOf(solana.TokenProgramID, solana.Token2022ProgramID), Executable),
		Account("associated_token_program", Address(solana.SPLAssociatedTokenAccountProgramID), Executable),
		Account("system_program", Address(solana.SystemProgramID), Executable),
	)
	if err != nil {
		return err
	}
	tokenAccount := accounts["token_account"]

	if args.Decimals > MaxDecimals {
		return errors.InvalidArgumentf("decimals must be at most %d, got %d", MaxDecimals, args.Decimals)
	}
	supply, err := forge.ScaleSupply(args.InitialSupply, args.Decimals)
	if err != nil {
		return err
	}
	if ctx.Load(mint).Exists() {
		return errors.AssetAlreadyExistsf("mint %s already exists", mint)
	}
	iface, err := token.New(tokenProgram)
	if err != nil {
		return err
	}

	// 1. the asset descriptor
	createMint := system.NewCreateAccountInstruction(
		ctx.Rent().MinimumBalance(token.MintSize),
		token.MintSize,
		tokenProgram,
		payer,
		mint,
	).Build()
	if err := ctx.Invoke(createMint); err != nil {
		if errors.Is(err, errors.AccountAlreadyInUse) {
			return errors.AssetAlreadyExistsf("mint %s already exists", mint)
		}
		return err
	}
	if err := ctx.Invoke(iface.InitializeMint(mint, payer, nil, args.Decimals)); err != nil {
		return err
	}

	// 2. the holding account, if absent
	createAssociated, err := token.NewCreateAssociatedInstruction(payer, payer, mint, tokenProgram, true)
	if err != nil {
		return err
	}
	if err := ctx.Invoke(createAssociated); err != nil {
		return err
	}

	// 3. the initial supply
	if err := ctx.Invoke(iface.MintTo(mint, tokenAccount, payer, supply)); err != nil {
		return err
	}

	ctx.Log("Token created successfully!")
	ctx.Log("Mint: %s", mint)
	ctx.Log("Initial Supply: %d", supply)
	return nil
}
