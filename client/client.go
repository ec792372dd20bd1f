package client

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/program"
	"github.com/solanaforge/forge/token"
)

// Client drives the issuance program on a backend.
type Client struct {
	Backend      Backend
	TokenProgram solana.PublicKey
}

type Option func(client *Client)

// WithTokenProgram selects the token program new tokens are created with.
func WithTokenProgram(tokenProgram solana.PublicKey) Option {
	return func(client *Client) {
		client.TokenProgram = tokenProgram
	}
}

func NewClient(backend Backend, options ...Option) *Client {
	client := &Client{
		Backend:      backend,
		TokenProgram: solana.TokenProgramID,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// Registration is the result of InitializeUser.
type Registration struct {
	Owner       forge.Address `json:"owner"`
	UserAccount forge.Address `json:"user_account"`
	Signature   string        `json:"signature"`
	Logs        []string      `json:"logs,omitempty"`
}

// TokenCreation is the result of CreateToken.
type TokenCreation struct {
	Mint         forge.Address          `json:"mint"`
	TokenAccount forge.Address          `json:"token_account"`
	TokenProgram forge.Address          `json:"token_program"`
	Decimals     uint8                  `json:"decimals"`
	Supply       forge.AmountBlockchain `json:"supply"`
	Signature    string                 `json:"signature"`
	Logs         []string               `json:"logs,omitempty"`
}

// InitializeUser registers owner, who signs and pays for the user record.
func (client *Client) InitializeUser(ctx context.Context, owner solana.PrivateKey) (*Registration, error) {
	userAccount, _, err := program.FindUserAddress(owner.PublicKey())
	if err != nil {
		return nil, err
	}
	recent, err := client.Backend.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := NewInitializeUserTx(owner.PublicKey(), recent)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(owner); err != nil {
		return nil, err
	}
	receipt, err := client.Backend.Submit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("initialize user %s: %w", owner.PublicKey(), err)
	}
	logrus.WithFields(logrus.Fields{
		"owner":        owner.PublicKey().String(),
		"user_account": userAccount.String(),
		"signature":    tx.Hash(),
	}).Info("initialized user")
	return &Registration{
		Owner:       forge.AddressFromPublicKey(owner.PublicKey()),
		UserAccount: forge.AddressFromPublicKey(userAccount),
		Signature:   tx.Hash(),
		Logs:        receipt.Logs,
	}, nil
}

// CreateToken creates a new token with a freshly generated mint key and mints
// initialSupply * 10^decimals to payer's associated token account.
func (client *Client) CreateToken(ctx context.Context, payer solana.PrivateKey, decimals uint8, initialSupply uint64) (*TokenCreation, error) {
	mint, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, err
	}
	return client.CreateTokenWithMint(ctx, payer, mint, decimals, initialSupply)
}

// CreateTokenWithMint is CreateToken with a caller supplied mint key.
func (client *Client) CreateTokenWithMint(ctx context.Context, payer solana.PrivateKey, mint solana.PrivateKey, decimals uint8, initialSupply uint64) (*TokenCreation, error) {
	// fail before touching the network
	supply, err := forge.ScaleSupply(initialSupply, decimals)
	if err != nil {
		return nil, err
	}
	tokenAccount, _, err := token.DeriveAssociatedTokenAddress(payer.PublicKey(), mint.PublicKey(), client.TokenProgram)
	if err != nil {
		return nil, err
	}
	recent, err := client.Backend.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	args := program.CreateTokenArgs{Decimals: decimals, InitialSupply: initialSupply}
	tx, err := NewCreateTokenTx(payer.PublicKey(), mint, client.TokenProgram, args, recent)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(payer); err != nil {
		return nil, err
	}
	receipt, err := client.Backend.Submit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("create token %s: %w", mint.PublicKey(), err)
	}
	logrus.WithFields(logrus.Fields{
		"mint":          mint.PublicKey().String(),
		"token_account": tokenAccount.String(),
		"supply":        supply,
		"signature":     tx.Hash(),
	}).Info("created token")
	return &TokenCreation{
		Mint:         forge.AddressFromPublicKey(mint.PublicKey()),
		TokenAccount: forge.AddressFromPublicKey(tokenAccount),
		TokenProgram: forge.AddressFromPublicKey(client.TokenProgram),
		Decimals:     decimals,
		Supply:       forge.NewAmountBlockchainFromUint64(supply),
		Signature:    tx.Hash(),
		Logs:         receipt.Logs,
	}, nil
}

// FetchUserRecord reads owner's user record.
func (client *Client) FetchUserRecord(ctx context.Context, owner solana.PublicKey) (*program.UserAccount, error) {
	address, _, err := program.FindUserAddress(owner)
	if err != nil {
		return nil, err
	}
	acc, err := client.Backend.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if !acc.IsOwnedBy(program.ProgramID) {
		return nil, errors.Errorf(errors.InvalidAccountOwner, "user account %s is owned by %s", address, acc.Owner)
	}
	return program.DecodeUserAccount(acc.Data)
}

// FetchMint reads a mint and the token program that owns it.
func (client *Client) FetchMint(ctx context.Context, mint solana.PublicKey) (*token.Mint, solana.PublicKey, error) {
	acc, err := client.Backend.GetAccount(ctx, mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if !token.IsSupported(acc.Owner) {
		return nil, solana.PublicKey{}, errors.Errorf(errors.InvalidAccountOwner, "%s is owned by %s, not a token program", mint, acc.Owner)
	}
	decoded, err := token.DecodeMint(acc.Data)
	if err != nil {
		return nil, solana.PublicKey{}, errors.InvalidAccountDataf("could not decode mint %s: %v", mint, err)
	}
	return decoded, acc.Owner, nil
}

// FetchBalance returns the owner's balance of the mint held in its associated
// token account, or its lamports when no mint is given. An absent account has a zero balance.
func (client *Client) FetchBalance(ctx context.Context, args *BalanceArgs) (*Balance, error) {
	owner, err := args.Owner().PublicKey()
	if err != nil {
		return nil, err
	}
	mintAddress, ok := args.Mint()
	if !ok {
		acc, err := client.Backend.GetAccount(ctx, owner)
		if errors.Is(err, errors.AccountNotFound) {
			return &Balance{Amount: forge.NewAmountBlockchainFromUint64(0), Decimals: forge.NativeDecimals}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Balance{Amount: forge.NewAmountBlockchainFromUint64(acc.Lamports), Decimals: forge.NativeDecimals}, nil
	}
	mint, err := mintAddress.PublicKey()
	if err != nil {
		return nil, err
	}
	mintInfo, tokenProgram, err := client.FetchMint(ctx, mint)
	if err != nil {
		return nil, err
	}
	balance := &Balance{Amount: forge.NewAmountBlockchainFromUint64(0), Decimals: mintInfo.Decimals}
	tokenAccount, _, err := token.DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
	if err != nil {
		return nil, err
	}
	acc, err := client.Backend.GetAccount(ctx, tokenAccount)
	if errors.Is(err, errors.AccountNotFound) {
		return balance, nil
	}
	if err != nil {
		return nil, err
	}
	holding, err := token.DecodeAccount(acc.Data)
	if err != nil {
		return nil, errors.InvalidAccountDataf("could not decode token account %s: %v", tokenAccount, err)
	}
	balance.Amount = forge.NewAmountBlockchainFromUint64(holding.Amount)
	return balance, nil
}
