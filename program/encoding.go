package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iancoleman/strcase"
	"github.com/solanaforge/forge/errors"
)

// ProgramAddress is the deployed address of the issuance program.
const ProgramAddress = "DqgCoHx1ncV6PzVYVg7bRxj4KQ5XrxhpPTT5qqe2FR99"

var ProgramID = solana.MustPublicKeyFromBase58(ProgramAddress)

const DiscriminatorSize = 8

type Discriminator [DiscriminatorSize]byte

// InstructionDiscriminator is the anchor sighash of an instruction, e.g. "InitializeUser" -> sha256("global:initialize_user")[:8].
func InstructionDiscriminator(name string) Discriminator {
	return discriminator(fmt.Sprintf("global:%s", strcase.ToSnake(name)))
}

// AccountDiscriminator prefixes the data of every account the program owns.
func AccountDiscriminator(name string) Discriminator {
	return discriminator(fmt.Sprintf("account:%s", strcase.ToCamel(name)))
}

func discriminator(preimage string) Discriminator {
	hash := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], hash[:DiscriminatorSize])
	return d
}

var (
	InitializeUserDiscriminator = InstructionDiscriminator("InitializeUser")
	CreateTokenDiscriminator    = InstructionDiscriminator("CreateToken")
	UserAccountDiscriminator    = AccountDiscriminator("UserAccount")
)

// CreateTokenArgs are the borsh encoded arguments of create_token.
type CreateTokenArgs struct {
	Decimals      uint8  `json:"decimals"`
	InitialSupply uint64 `json:"initial_supply"`
}

func EncodeInitializeUser() []byte {
	return append([]byte(nil), InitializeUserDiscriminator[:]...)
}

func EncodeCreateToken(args CreateTokenArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(CreateTokenDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeCreateTokenArgs(data []byte) (CreateTokenArgs, error) {
	var args CreateTokenArgs
	if err := bin.NewBorshDecoder(data).Decode(&args); err != nil {
		return args, errors.InvalidArgumentf("could not decode create_token arguments: %v", err)
	}
	return args, nil
}

// UserSeed prefixes the seeds of a user record address.
const UserSeed = "user"

// UserAccountSize is the discriminator plus the authority key.
const UserAccountSize = DiscriminatorSize + 32

// UserAccount is the per-owner user record.
type UserAccount struct {
	Authority solana.PublicKey `json:"authority"`
}

func (u *UserAccount) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(UserAccountDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(u); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeUserAccount(data []byte) (*UserAccount, error) {
	if len(data) < UserAccountSize {
		return nil, errors.InvalidAccountDataf("user account is %d bytes, expected %d", len(data), UserAccountSize)
	}
	if !bytes.Equal(data[:DiscriminatorSize], UserAccountDiscriminator[:]) {
		return nil, errors.InvalidAccountDataf("account discriminator mismatch")
	}
	user := &UserAccount{}
	if err := bin.NewBorshDecoder(data[DiscriminatorSize:]).Decode(user); err != nil {
		return nil, errors.InvalidAccountDataf("could not decode user account: %v", err)
	}
	return user, nil
}

// FindUserAddress returns the address of owner's user record and its bump seed.
func FindUserAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(UserSeed), owner[:]}, ProgramID)
}
