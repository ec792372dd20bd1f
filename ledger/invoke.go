package ledger

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/errors"
)

// txContext holds the uncommitted account state of one transaction.
type txContext struct {
	rt       *Runtime
	accounts map[solana.PublicKey]*Account
	logs     []string
}

func newTxContext(rt *Runtime) *txContext {
	return &txContext{
		rt:       rt,
		accounts: map[solana.PublicKey]*Account{},
	}
}

// load returns a private copy of the current version of an account.
func (txc *txContext) load(key solana.PublicKey) *Account {
	if acc, ok := txc.accounts[key]; ok {
		return acc.Clone()
	}
	if acc, ok := txc.rt.accounts.Get(key.String()); ok {
		return acc.Clone()
	}
	return NewEmptyAccount()
}

func (txc *txContext) log(format string, args ...interface{}) {
	txc.logs = append(txc.logs, fmt.Sprintf(format, args...))
}

func (txc *txContext) invoke(programID solana.PublicKey, metas []*solana.AccountMeta, data []byte, depth int) error {
	if depth > MaxInvokeDepth {
		return errors.InvalidArgumentf("cross-program invocation exceeds depth %d", MaxInvokeDepth)
	}
	program, ok := txc.rt.programs[programID]
	if !ok {
		return errors.Errorf(errors.UnknownProgram, "program %s is not deployed", programID)
	}
	ctx := &InvokeContext{
		tx:      txc,
		program: programID,
		metas:   metas,
		depth:   depth,
	}
	txc.log("Program %s invoke [%d]", programID, depth)
	if err := program.Execute(ctx, data); err != nil {
		txc.log("Program %s failed: %v", programID, err)
		return err
	}
	txc.log("Program %s success", programID)
	return nil
}

// checkRent rejects transactions that leave a data account below the rent exempt minimum.
func (txc *txContext) checkRent() error {
	for key, acc := range txc.accounts {
		if !acc.Exists() || acc.Executable || len(acc.Data) == 0 {
			continue
		}
		if !txc.rt.rent.IsExempt(acc.Lamports, len(acc.Data)) {
			return errors.Errorf(errors.NotRentExempt, "account %s holds %d lamports, needs %d", key, acc.Lamports, txc.rt.rent.MinimumBalance(len(acc.Data)))
		}
	}
	return nil
}

func (txc *txContext) commit() {
	for key, acc := range txc.accounts {
		if acc.Exists() {
			txc.rt.accounts.Set(key.String(), acc)
		} else {
			txc.rt.accounts.Delete(key.String())
		}
	}
}

// InvokeContext is handed to a program for the duration of one instruction.
type InvokeContext struct {
	tx      *txContext
	program solana.PublicKey
	metas   []*solana.AccountMeta
	depth   int
}

// ProgramID is the id of the executing program.
func (ctx *InvokeContext) ProgramID() solana.PublicKey {
	return ctx.program
}

// Accounts are the instruction's accounts, in order, with privileges resolved.
func (ctx *InvokeContext) Accounts() []*solana.AccountMeta {
	return ctx.metas
}

func (ctx *InvokeContext) Depth() int {
	return ctx.depth
}

func (ctx *InvokeContext) Rent() Rent {
	return ctx.tx.rt.rent
}

// Meta returns the merged privileges of key within this instruction.
func (ctx *InvokeContext) Meta(key solana.PublicKey) (*solana.AccountMeta, bool) {
	var merged *solana.AccountMeta
	for _, meta := range ctx.metas {
		if !meta.PublicKey.Equals(key) {
			continue
		}
		if merged == nil {
			merged = &solana.AccountMeta{PublicKey: key}
		}
		merged.IsSigner = merged.IsSigner || meta.IsSigner
		merged.IsWritable = merged.IsWritable || meta.IsWritable
	}
	return merged, merged != nil
}

func (ctx *InvokeContext) IsSigner(key solana.PublicKey) bool {
	meta, ok := ctx.Meta(key)
	return ok && meta.IsSigner
}

func (ctx *InvokeContext) IsWritable(key solana.PublicKey) bool {
	meta, ok := ctx.Meta(key)
	return ok && meta.IsWritable
}

// Load returns a copy of the account's current state; changes only take effect through Store.
func (ctx *InvokeContext) Load(key solana.PublicKey) *Account {
	return ctx.tx.load(key)
}

// Store writes an account, enforcing the runtime's ownership rules:
// only writable accounts change, only the owner program changes data,
// debits lamports, or reassigns a zeroed account.
func (ctx *InvokeContext) Store(key solana.PublicKey, acc *Account) error {
	meta, ok := ctx.Meta(key)
	if !ok {
		return errors.InvalidArgumentf("account %s is not part of the instruction", key)
	}
	before := ctx.tx.load(key)
	if before.equal(acc) {
		return nil
	}
	if !meta.IsWritable {
		return errors.Errorf(errors.AccountNotWritable, "account %s is read-only", key)
	}
	if before.Executable || acc.Executable {
		return errors.Errorf(errors.InvalidAccountOwner, "executable account %s is immutable", key)
	}
	owned := before.IsOwnedBy(ctx.program)
	if !acc.Owner.Equals(before.Owner) && !(owned && before.dataZeroed()) {
		return errors.Errorf(errors.InvalidAccountOwner, "program %s may not assign account %s", ctx.program, key)
	}
	if !bytes.Equal(before.Data, acc.Data) && !owned {
		return errors.Errorf(errors.InvalidAccountOwner, "program %s may not modify data of account %s owned by %s", ctx.program, key, before.Owner)
	}
	if acc.Lamports < before.Lamports && !owned {
		return errors.Errorf(errors.InvalidAccountOwner, "program %s may not debit account %s owned by %s", ctx.program, key, before.Owner)
	}
	ctx.tx.accounts[key] = acc.Clone()
	return nil
}

// Log appends a program log line, as msg! does on chain.
func (ctx *InvokeContext) Log(format string, args ...interface{}) {
	ctx.tx.log("Program log: "+format, args...)
}

// Invoke calls another program with a subset of this instruction's accounts.
func (ctx *InvokeContext) Invoke(ix solana.Instruction) error {
	return ctx.InvokeSigned(ix)
}

// InvokeSigned calls another program. Each entry of signerSeeds derives a
// program address of the calling program that is treated as a signer.
func (ctx *InvokeContext) InvokeSigned(ix solana.Instruction, signerSeeds ...[][]byte) error {
	pdas := make([]solana.PublicKey, 0, len(signerSeeds))
	for _, seeds := range signerSeeds {
		pda, err := solana.CreateProgramAddress(seeds, ctx.program)
		if err != nil {
			return errors.InvalidArgumentf("invalid signer seeds: %v", err)
		}
		pdas = append(pdas, pda)
	}
	programID := ix.ProgramID()
	if _, ok := ctx.Meta(programID); !ok {
		return errors.Errorf(errors.UnknownProgram, "program %s is not part of the instruction", programID)
	}
	data, err := ix.Data()
	if err != nil {
		return errors.InvalidArgumentf("could not encode instruction for %s: %v", programID, err)
	}
	accounts := ix.Accounts()
	metas := make([]*solana.AccountMeta, len(accounts))
	for i, meta := range accounts {
		caller, ok := ctx.Meta(meta.PublicKey)
		if !ok {
			return errors.InvalidArgumentf("account %s is not part of the instruction", meta.PublicKey)
		}
		if meta.IsWritable && !caller.IsWritable {
			return errors.Errorf(errors.AccountNotWritable, "writable privilege escalated for %s", meta.PublicKey)
		}
		if meta.IsSigner && !caller.IsSigner && !containsKey(pdas, meta.PublicKey) {
			return errors.MissingSignerf("signer privilege escalated for %s", meta.PublicKey)
		}
		metas[i] = &solana.AccountMeta{
			PublicKey:  meta.PublicKey,
			IsWritable: meta.IsWritable,
			IsSigner:   meta.IsSigner,
		}
	}
	return ctx.tx.invoke(programID, metas, data, ctx.depth+1)
}

func containsKey(keys []solana.PublicKey, key solana.PublicKey) bool {
	for _, k := range keys {
		if k.Equals(key) {
			return true
		}
	}
	return false
}
