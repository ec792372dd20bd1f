package program_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
	"github.com/solanaforge/forge/program"
	"github.com/solanaforge/forge/token"
	"github.com/stretchr/testify/require"
)

const oneSol = 1_000_000_000

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func newRuntime(t *testing.T) (*ledger.Runtime, solana.PrivateKey) {
	rt := ledger.NewRuntime()
	program.Deploy(rt)
	payer := newKey(t)
	require.NoError(t, rt.Airdrop(payer.PublicKey(), 10*oneSol))
	return rt, payer
}

func process(t *testing.T, rt *ledger.Runtime, payer solana.PrivateKey, ix solana.Instruction, extra ...solana.PrivateKey) (*ledger.Receipt, error) {
	t.Helper()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, rt.LatestBlockhash(), solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	keys := append([]solana.PrivateKey{payer}, extra...)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(key) {
				return &keys[i]
			}
		}
		return nil
	})
	require.NoError(t, err)
	return rt.Process(context.Background(), tx)
}

func createToken(t *testing.T, rt *ledger.Runtime, payer, mint solana.PrivateKey, tokenProgram solana.PublicKey, decimals uint8, supply uint64) (*ledger.Receipt, error) {
	t.Helper()
	ix, err := program.NewCreateTokenInstruction(payer.PublicKey(), mint.PublicKey(), tokenProgram, program.CreateTokenArgs{
		Decimals:      decimals,
		InitialSupply: supply,
	})
	require.NoError(t, err)
	return process(t, rt, payer, ix, mint)
}

func holding(t *testing.T, rt *ledger.Runtime, owner, mint, tokenProgram solana.PublicKey) (*token.Account, bool) {
	t.Helper()
	ata, _, err := token.DeriveAssociatedTokenAddress(owner, mint, tokenProgram)
	require.NoError(t, err)
	acc, ok := rt.GetAccount(ata)
	if !ok {
		return nil, false
	}
	decoded, err := token.DecodeAccount(acc.Data)
	require.NoError(t, err)
	return decoded, true
}

func TestInitializeUser(t *testing.T) {
	rt, user := newRuntime(t)
	ix, err := program.NewInitializeUserInstruction(user.PublicKey())
	require.NoError(t, err)
	receipt, err := process(t, rt, user, ix)
	require.NoError(t, err)
	require.Contains(t, receipt.Logs, "Program log: User account initialized for: "+user.PublicKey().String())

	address, _, err := program.FindUserAddress(user.PublicKey())
	require.NoError(t, err)
	acc, ok := rt.GetAccount(address)
	require.True(t, ok)
	require.Equal(t, program.ProgramID, acc.Owner)
	require.Equal(t, rt.Rent().MinimumBalance(program.UserAccountSize), acc.Lamports)
	record, err := program.DecodeUserAccount(acc.Data)
	require.NoError(t, err)
	require.Equal(t, user.PublicKey(), record.Authority)

	// registering twice fails and leaves the record alone
	ix, err = program.NewInitializeUserInstruction(user.PublicKey())
	require.NoError(t, err)
	_, err = process(t, rt, user, ix)
	require.Equal(t, errors.AlreadyInitialized, errors.StatusOf(err))
	after, ok := rt.GetAccount(address)
	require.True(t, ok)
	require.Equal(t, acc, after)
}

func TestInitializeUserWrongAddress(t *testing.T) {
	rt, user := newRuntime(t)
	ix, err := program.NewInitializeUserInstruction(user.PublicKey())
	require.NoError(t, err)
	accounts := ix.Accounts()
	accounts[0] = &solana.AccountMeta{PublicKey: newKey(t).PublicKey(), IsWritable: true}
	_, err = process(t, rt, user, solana.NewInstruction(program.ProgramID, accounts, program.EncodeInitializeUser()))
	require.Equal(t, errors.InvalidAddress, errors.StatusOf(err))
	require.ErrorContains(t, err, "account user_account")
}

func TestInitializeUserMissingAccount(t *testing.T) {
	rt, user := newRuntime(t)
	ix, err := program.NewInitializeUserInstruction(user.PublicKey())
	require.NoError(t, err)
	// drop system_program
	accounts := ix.Accounts()[:2]
	_, err = process(t, rt, user, solana.NewInstruction(program.ProgramID, accounts, program.EncodeInitializeUser()))
	require.Equal(t, errors.InvalidArgument, errors.StatusOf(err))
	require.ErrorContains(t, err, "expected 3 accounts, got 2")

	address, _, err := program.FindUserAddress(user.PublicKey())
	require.NoError(t, err)
	_, ok := rt.GetAccount(address)
	require.False(t, ok)
}

func TestCreateTokenSupply(t *testing.T) {
	vectors := []struct {
		decimals uint8
		supply   uint64
		balance  uint64
	}{
		{2, 500, 50000},
		{0, 0, 0},
		{0, 1, 1},
		{9, 1, 1_000_000_000},
		{6, 1_000_000, 1_000_000_000_000},
		{9, 18446744073, 18446744073000000000},
	}
	for _, v := range vectors {
		rt, payer := newRuntime(t)
		mint := newKey(t)
		receipt, err := createToken(t, rt, payer, mint, solana.TokenProgramID, v.decimals, v.supply)
		require.NoError(t, err)
		require.Contains(t, receipt.Logs, "Program log: Token created successfully!")
		require.Contains(t, receipt.Logs, "Program log: Mint: "+mint.PublicKey().String())

		account, ok := holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
		require.True(t, ok)
		require.Equal(t, v.balance, account.Amount)
		require.Equal(t, payer.PublicKey(), account.Owner)

		acc, ok := rt.GetAccount(mint.PublicKey())
		require.True(t, ok)
		require.Equal(t, solana.TokenProgramID, acc.Owner)
		decoded, err := token.DecodeMint(acc.Data)
		require.NoError(t, err)
		require.Equal(t, v.decimals, decoded.Decimals)
		require.Equal(t, v.balance, decoded.Supply)
		require.Equal(t, payer.PublicKey(), *decoded.MintAuthority)
		require.Nil(t, decoded.FreezeAuthority)
	}
}

func TestCreateTokenOverflow(t *testing.T) {
	vectors := []struct {
		decimals uint8
		supply   uint64
	}{
		{1, ^uint64(0)},
		{9, 18446744074},
		{9, ^uint64(0)},
	}
	for _, v := range vectors {
		rt, payer := newRuntime(t)
		mint := newKey(t)
		_, err := createToken(t, rt, payer, mint, solana.TokenProgramID, v.decimals, v.supply)
		require.Equal(t, errors.SupplyOverflow, errors.StatusOf(err))

		// nothing was created, not even the fee was charged
		_, ok := rt.GetAccount(mint.PublicKey())
		require.False(t, ok)
		_, ok = holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
		require.False(t, ok)
		acc, ok := rt.GetAccount(payer.PublicKey())
		require.True(t, ok)
		require.EqualValues(t, 10*oneSol, acc.Lamports)
	}
}

func TestCreateTokenInvalidDecimals(t *testing.T) {
	rt, payer := newRuntime(t)
	mint := newKey(t)
	_, err := createToken(t, rt, payer, mint, solana.TokenProgramID, 10, 1)
	require.Equal(t, errors.InvalidArgument, errors.StatusOf(err))
	_, ok := rt.GetAccount(mint.PublicKey())
	require.False(t, ok)
}

func TestCreateTokenAccumulatesOnExistingAccount(t *testing.T) {
	rt, payer := newRuntime(t)
	mint := newKey(t)

	// the holding account already exists with a balance of 100
	ata, _, err := token.DeriveAssociatedTokenAddress(payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.NoError(t, err)
	existing := &token.Account{Mint: mint.PublicKey(), Owner: payer.PublicKey(), Amount: 100, State: token.Initialized}
	data, err := existing.Encode()
	require.NoError(t, err)
	rt.SetAccount(ata, &ledger.Account{
		Lamports: rt.Rent().MinimumBalance(token.AccountSize),
		Owner:    solana.TokenProgramID,
		Data:     data,
	})

	_, err = createToken(t, rt, payer, mint, solana.TokenProgramID, 0, 50)
	require.NoError(t, err)
	account, ok := holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 150, account.Amount)
}

func TestCreateTokenOnFundedHoldingAddress(t *testing.T) {
	rt, payer := newRuntime(t)
	mint := newKey(t)

	// someone sent lamports to the holding address before it was created
	ata, _, err := token.DeriveAssociatedTokenAddress(payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.NoError(t, err)
	require.NoError(t, rt.Airdrop(ata, 1))

	_, err = createToken(t, rt, payer, mint, solana.TokenProgramID, 2, 500)
	require.NoError(t, err)
	account, ok := holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 50000, account.Amount)
	require.Equal(t, payer.PublicKey(), account.Owner)
}

func TestCreateTokenTwice(t *testing.T) {
	rt, payer := newRuntime(t)
	first := newKey(t)
	second := newKey(t)
	_, err := createToken(t, rt, payer, first, solana.TokenProgramID, 0, 100)
	require.NoError(t, err)

	// every creation call makes a new asset with its own holding account
	_, err = createToken(t, rt, payer, second, solana.TokenProgramID, 0, 50)
	require.NoError(t, err)
	account, ok := holding(t, rt, payer.PublicKey(), first.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 100, account.Amount)
	account, ok = holding(t, rt, payer.PublicKey(), second.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 50, account.Amount)

	// reusing a mint key is rejected and the balance is untouched
	_, err = createToken(t, rt, payer, first, solana.TokenProgramID, 0, 50)
	require.Equal(t, errors.AssetAlreadyExists, errors.StatusOf(err))
	account, ok = holding(t, rt, payer.PublicKey(), first.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 100, account.Amount)
}

func TestMintByOtherAuthority(t *testing.T) {
	rt, payer := newRuntime(t)
	mint := newKey(t)
	_, err := createToken(t, rt, payer, mint, solana.TokenProgramID, 2, 500)
	require.NoError(t, err)

	intruder := newKey(t)
	require.NoError(t, rt.Airdrop(intruder.PublicKey(), oneSol))
	ata, _, err := token.DeriveAssociatedTokenAddress(payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.NoError(t, err)
	_, err = process(t, rt, intruder, token.Program{}.MintTo(mint.PublicKey(), ata, intruder.PublicKey(), 1))
	require.Equal(t, errors.Unauthorized, errors.StatusOf(err))

	account, ok := holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.True(t, ok)
	require.EqualValues(t, 50000, account.Amount)
}

func TestCreateTokenGenericInterface(t *testing.T) {
	rt, payer := newRuntime(t)
	mint := newKey(t)
	_, err := createToken(t, rt, payer, mint, solana.Token2022ProgramID, 2, 500)
	require.NoError(t, err)

	acc, ok := rt.GetAccount(mint.PublicKey())
	require.True(t, ok)
	require.Equal(t, solana.Token2022ProgramID, acc.Owner)
	account, ok := holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.Token2022ProgramID)
	require.True(t, ok)
	require.EqualValues(t, 50000, account.Amount)
	_, ok = holding(t, rt, payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID)
	require.False(t, ok)
}

func TestCreateTokenValidation(t *testing.T) {
	vectors := []struct {
		name   string
		modify func(accounts []*solana.AccountMeta)
		status errors.Status
		err    string
	}{
		{
			name: "unsupported token program",
			modify: func(accounts []*solana.AccountMeta) {
				ata, _, err := token.DeriveAssociatedTokenAddress(accounts[2].PublicKey, accounts[0].PublicKey, solana.SystemProgramID)
				if err != nil {
					panic(err)
				}
				accounts[1] = &solana.AccountMeta{PublicKey: ata, IsWritable: true}
				accounts[3] = &solana.AccountMeta{PublicKey: solana.SystemProgramID}
			},
			status: errors.InvalidAddress,
			err:    "account token_program",
		},
		{
			name: "foreign holding account",
			modify: func(accounts []*solana.AccountMeta) {
				accounts[1] = &solana.AccountMeta{PublicKey: solana.SystemProgramID, IsWritable: true}
			},
			status: errors.InvalidAddress,
			err:    "account token_account",
		},
		{
			name: "unsigned mint",
			modify: func(accounts []*solana.AccountMeta) {
				accounts[0] = &solana.AccountMeta{PublicKey: accounts[0].PublicKey, IsWritable: true}
			},
			status: errors.MissingSigner,
			err:    "account mint",
		},
		{
			name: "wrong associated token program",
			modify: func(accounts []*solana.AccountMeta) {
				accounts[4] = &solana.AccountMeta{PublicKey: solana.TokenProgramID}
			},
			status: errors.InvalidAddress,
			err:    "account associated_token_program",
		},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			rt, payer := newRuntime(t)
			mint := newKey(t)
			ix, err := program.NewCreateTokenInstruction(payer.PublicKey(), mint.PublicKey(), solana.TokenProgramID, program.CreateTokenArgs{Decimals: 0, InitialSupply: 1})
			require.NoError(t, err)
			accounts := ix.Accounts()
			v.modify(accounts)
			data, err := ix.Data()
			require.NoError(t, err)
			_, err = process(t, rt, payer, solana.NewInstruction(program.ProgramID, accounts, data), mint)
			require.Equal(t, v.status, errors.StatusOf(err))
			require.ErrorContains(t, err, v.err)
			_, ok := rt.GetAccount(mint.PublicKey())
			require.False(t, ok)
		})
	}
}

func TestUnknownInstruction(t *testing.T) {
	rt, payer := newRuntime(t)
	_, err := process(t, rt, payer, solana.NewInstruction(program.ProgramID, solana.AccountMetaSlice{}, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.Equal(t, errors.InvalidArgument, errors.StatusOf(err))
}
