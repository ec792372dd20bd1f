package ledger_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
	"github.com/stretchr/testify/require"
)

const (
	vaultWithdrawSigned byte = iota
	vaultWithdrawUnsigned
	vaultScribble
	vaultRecurse
)

// vaultProgram holds lamports in a program address and pays them out by cpi.
type vaultProgram struct {
	id solana.PublicKey
}

func (p *vaultProgram) ProgramID() solana.PublicKey {
	return p.id
}

func (p *vaultProgram) vault() (solana.PublicKey, uint8) {
	key, bump, err := solana.FindProgramAddress([][]byte{[]byte("vault")}, p.id)
	if err != nil {
		panic(err)
	}
	return key, bump
}

func (p *vaultProgram) Execute(ctx *ledger.InvokeContext, data []byte) error {
	accounts := ctx.Accounts()
	vault, bump := p.vault()
	switch data[0] {
	case vaultWithdrawSigned:
		ix := system.NewTransferInstruction(100, vault, accounts[1].PublicKey).Build()
		ctx.Log("withdraw")
		return ctx.InvokeSigned(ix, [][]byte{[]byte("vault"), {bump}})
	case vaultWithdrawUnsigned:
		ix := system.NewTransferInstruction(100, vault, accounts[1].PublicKey).Build()
		return ctx.Invoke(ix)
	case vaultScribble:
		acc := ctx.Load(accounts[1].PublicKey)
		acc.Data = []byte{1, 2, 3}
		return ctx.Store(accounts[1].PublicKey, acc)
	case vaultRecurse:
		ix := solana.NewInstruction(p.id, accounts, data)
		return ctx.Invoke(ix)
	}
	return errors.InvalidArgumentf("unknown vault instruction %d", data[0])
}

func vaultInstruction(p *vaultProgram, recipient solana.PublicKey, op byte) solana.Instruction {
	vault, _ := p.vault()
	return solana.NewInstruction(p.id, solana.AccountMetaSlice{
		{PublicKey: vault, IsWritable: true},
		{PublicKey: recipient, IsWritable: true},
		{PublicKey: solana.SystemProgramID},
		{PublicKey: p.id},
	}, []byte{op})
}

func TestInvokeSigned(t *testing.T) {
	ctx := context.Background()
	rt := ledger.NewRuntime()
	program := &vaultProgram{id: newKey(t).PublicKey()}
	rt.Register(program)
	vault, _ := program.vault()
	payer := newKey(t)
	recipient := newKey(t).PublicKey()
	require.NoError(t, rt.Airdrop(payer.PublicKey(), oneSol))
	require.NoError(t, rt.Airdrop(vault, oneSol))

	receipt, err := rt.Process(ctx, signedTx(t, rt, payer, []solana.Instruction{
		vaultInstruction(program, recipient, vaultWithdrawSigned),
	}))
	require.NoError(t, err)
	require.EqualValues(t, 100, lamports(rt, recipient))
	require.EqualValues(t, oneSol-100, lamports(rt, vault))
	require.Contains(t, receipt.Logs, "Program log: withdraw")
	require.Contains(t, receipt.Logs, "Program 11111111111111111111111111111111 invoke [2]")
}

func TestInvokeRejectsEscalation(t *testing.T) {
	ctx := context.Background()
	rt := ledger.NewRuntime()
	program := &vaultProgram{id: newKey(t).PublicKey()}
	rt.Register(program)
	vault, _ := program.vault()
	payer := newKey(t)
	recipient := newKey(t).PublicKey()
	require.NoError(t, rt.Airdrop(payer.PublicKey(), oneSol))
	require.NoError(t, rt.Airdrop(vault, oneSol))

	vectors := []struct {
		name   string
		op     byte
		status errors.Status
	}{
		{"unsigned cpi", vaultWithdrawUnsigned, errors.MissingSigner},
		{"foreign data", vaultScribble, errors.InvalidAccountOwner},
		{"too deep", vaultRecurse, errors.InvalidArgument},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			_, err := rt.Process(ctx, signedTx(t, rt, payer, []solana.Instruction{
				vaultInstruction(program, recipient, v.op),
			}))
			require.Equal(t, v.status, errors.StatusOf(err))
			require.EqualValues(t, oneSol, lamports(rt, vault))
			_, ok := rt.GetAccount(recipient)
			require.False(t, ok)
		})
	}
}

func TestUnknownProgram(t *testing.T) {
	ctx := context.Background()
	rt := ledger.NewRuntime()
	payer := newKey(t)
	require.NoError(t, rt.Airdrop(payer.PublicKey(), oneSol))

	ix := solana.NewInstruction(newKey(t).PublicKey(), solana.AccountMetaSlice{}, []byte{0})
	_, err := rt.Process(ctx, signedTx(t, rt, payer, []solana.Instruction{ix}))
	require.Equal(t, errors.UnknownProgram, errors.StatusOf(err))
}
