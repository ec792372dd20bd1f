package token

import (
	"github.com/gagliardetto/solana-go"
	tokenprogram "github.com/gagliardetto/solana-go/programs/token"
	"github.com/solanaforge/forge/errors"
)

// Interface is a token program that the issuance program can call into.
// Each method returns the instruction to invoke; nothing is executed.
type Interface interface {
	ProgramID() solana.PublicKey
	InitializeMint(mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) solana.Instruction
	InitializeAccount(account, mint, owner solana.PublicKey) solana.Instruction
	MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction
}

// Program is the classic SPL token program.
type Program struct{}

// Generic is any token program that is instruction compatible with SPL token, e.g. Token-2022.
type Generic struct {
	ID solana.PublicKey
}

var _ Interface = Program{}
var _ Interface = Generic{}

// New returns the interface for a token program id.
func New(programID solana.PublicKey) (Interface, error) {
	switch {
	case programID.Equals(solana.TokenProgramID):
		return Program{}, nil
	case programID.Equals(solana.Token2022ProgramID):
		return Generic{ID: programID}, nil
	default:
		return nil, errors.Errorf(errors.InvalidAddress, "%s is not a supported token program", programID)
	}
}

// IsSupported reports whether the program id is a known token program.
func IsSupported(programID solana.PublicKey) bool {
	return programID.Equals(solana.TokenProgramID) || programID.Equals(solana.Token2022ProgramID)
}

func (p Program) ProgramID() solana.PublicKey {
	return solana.TokenProgramID
}

func (p Program) InitializeMint(mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) solana.Instruction {
	return Generic{ID: p.ProgramID()}.InitializeMint(mint, mintAuthority, freezeAuthority, decimals)
}

func (p Program) InitializeAccount(account, mint, owner solana.PublicKey) solana.Instruction {
	return Generic{ID: p.ProgramID()}.InitializeAccount(account, mint, owner)
}

func (p Program) MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return Generic{ID: p.ProgramID()}.MintTo(mint, destination, authority, amount)
}

func (g Generic) ProgramID() solana.PublicKey {
	return g.ID
}

func (g Generic) InitializeMint(mint, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey, decimals uint8) solana.Instruction {
	builder := tokenprogram.NewInitializeMint2InstructionBuilder().
		SetDecimals(decimals).
		SetMintAuthority(mintAuthority).
		SetMintAccount(mint)
	if freezeAuthority != nil {
		builder.SetFreezeAuthority(*freezeAuthority)
	}
	return g.rebind(builder.Build())
}

func (g Generic) InitializeAccount(account, mint, owner solana.PublicKey) solana.Instruction {
	return g.rebind(tokenprogram.NewInitializeAccount3Instruction(owner, account, mint).Build())
}

func (g Generic) MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return g.rebind(tokenprogram.NewMintToInstruction(amount, mint, destination, authority, []solana.PublicKey{}).Build())
}

// The solana-go builders always target the package level token program id,
// so the accounts and data are moved onto an instruction for this program.
func (g Generic) rebind(ix *tokenprogram.Instruction) solana.Instruction {
	data, err := ix.Data()
	if err != nil {
		// the builders only produce encodable instructions
		panic(err)
	}
	return solana.NewInstruction(g.ID, ix.Accounts(), data)
}
