package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
	"github.com/tidwall/btree"
)

// Solana allows a transaction's instructions to nest cross-program invocations 4 deep.
const MaxInvokeDepth = 4

// fixed 5000 lamports
// https://solana.com/docs/core/fees#key-points
const DefaultLamportsPerSignature = 5000

// Number of blockhashes a transaction may reference before it expires.
const MaxRecentBlockhashes = 150

var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// Program is a native program hosted by the runtime.
type Program interface {
	ProgramID() solana.PublicKey
	Execute(ctx *InvokeContext, data []byte) error
}

// Receipt describes a processed (or simulated) transaction.
type Receipt struct {
	Signature solana.Signature `json:"signature"`
	Slot      uint64           `json:"slot"`
	Fee       uint64           `json:"fee"`
	Logs      []string         `json:"logs"`
}

type Option func(rt *Runtime)

func WithRent(rent Rent) Option {
	return func(rt *Runtime) {
		rt.rent = rent
	}
}

func WithLamportsPerSignature(lamports uint64) Option {
	return func(rt *Runtime) {
		rt.lamportsPerSignature = lamports
	}
}

// Runtime is an in-memory ledger. It executes transactions one at a time and
// commits each one atomically: either every instruction succeeds and all
// account changes are stored, or nothing is.
type Runtime struct {
	mu                   sync.Mutex
	accounts             *btree.Map[string, *Account]
	programs             map[solana.PublicKey]Program
	rent                 Rent
	lamportsPerSignature uint64
	slot                 uint64
	blockhashes          []solana.Hash
	processed            map[solana.Signature]struct{}
}

func NewRuntime(options ...Option) *Runtime {
	rt := &Runtime{
		accounts:             btree.NewMap[string, *Account](0),
		programs:             map[solana.PublicKey]Program{},
		rent:                 DefaultRent,
		lamportsPerSignature: DefaultLamportsPerSignature,
		processed:            map[solana.Signature]struct{}{},
	}
	for _, opt := range options {
		opt(rt)
	}
	genesis := sha256.Sum256([]byte("genesis"))
	rt.blockhashes = []solana.Hash{solana.Hash(genesis)}
	rt.Register(&SystemProgram{})
	return rt
}

// Register deploys native programs as executable accounts.
func (rt *Runtime) Register(programs ...Program) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, program := range programs {
		id := program.ProgramID()
		rt.programs[id] = program
		rt.accounts.Set(id.String(), &Account{
			Lamports:   1,
			Owner:      NativeLoaderID,
			Executable: true,
		})
	}
}

func (rt *Runtime) Rent() Rent {
	return rt.rent
}

func (rt *Runtime) Slot() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.slot
}

func (rt *Runtime) LatestBlockhash() solana.Hash {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.blockhashes[len(rt.blockhashes)-1]
}

// GetAccount returns a copy of the stored account.
func (rt *Runtime) GetAccount(key solana.PublicKey) (*Account, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	acc, ok := rt.accounts.Get(key.String())
	if !ok {
		return nil, false
	}
	return acc.Clone(), true
}

// SetAccount overwrites an account outside of any transaction, e.g. to seed genesis state.
func (rt *Runtime) SetAccount(key solana.PublicKey, acc *Account) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if acc == nil || !acc.Exists() {
		rt.accounts.Delete(key.String())
		return
	}
	rt.accounts.Set(key.String(), acc.Clone())
}

// Airdrop credits lamports to an account, creating it if needed.
func (rt *Runtime) Airdrop(key solana.PublicKey, lamports uint64) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	acc := NewEmptyAccount()
	if existing, ok := rt.accounts.Get(key.String()); ok {
		acc = existing.Clone()
	}
	total, err := forge.CheckedAdd(acc.Lamports, lamports)
	if err != nil {
		return err
	}
	acc.Lamports = total
	rt.accounts.Set(key.String(), acc)
	logrus.WithFields(logrus.Fields{
		"account":  key.String(),
		"lamports": lamports,
	}).Debug("airdrop")
	return nil
}

// Range iterates over a consistent snapshot of all accounts, ordered by address.
func (rt *Runtime) Range(fn func(key solana.PublicKey, acc *Account) bool) {
	rt.mu.Lock()
	snapshot := rt.accounts.Copy()
	rt.mu.Unlock()
	snapshot.Scan(func(key string, acc *Account) bool {
		return fn(solana.MustPublicKeyFromBase58(key), acc.Clone())
	})
}

// Process verifies and executes a signed transaction, committing its effects on success.
func (rt *Runtime) Process(ctx context.Context, tx *solana.Transaction) (*Receipt, error) {
	return rt.execute(ctx, tx, true)
}

// Simulate executes a signed transaction without committing any of its effects.
func (rt *Runtime) Simulate(ctx context.Context, tx *solana.Transaction) (*Receipt, error) {
	return rt.execute(ctx, tx, false)
}

func (rt *Runtime) execute(ctx context.Context, tx *solana.Transaction, commit bool) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errors.InvalidArgumentf("transaction not initialized")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()

	message := tx.Message
	content, err := message.MarshalBinary()
	if err != nil {
		return nil, errors.InvalidArgumentf("unable to encode message: %v", err)
	}
	signers := message.Signers()
	if len(signers) == 0 {
		return nil, errors.Errorf(errors.InvalidSignature, "transaction has no fee payer")
	}
	if len(tx.Signatures) != len(signers) {
		return nil, errors.Errorf(errors.InvalidSignature, "expected %d signatures, got %d", len(signers), len(tx.Signatures))
	}
	for i, signer := range signers {
		if !tx.Signatures[i].Verify(signer, content) {
			return nil, errors.Errorf(errors.InvalidSignature, "signature %d does not verify for %s", i, signer)
		}
	}
	signature := tx.Signatures[0]
	if _, ok := rt.processed[signature]; ok {
		return nil, errors.Errorf(errors.TransactionExists, "transaction %s has already been processed", signature)
	}
	if !rt.isRecent(message.RecentBlockhash) {
		return nil, errors.Errorf(errors.TransactionTimedOut, "blockhash not found: %s", message.RecentBlockhash)
	}

	txc := newTxContext(rt)
	receipt := &Receipt{
		Signature: signature,
		Slot:      rt.slot,
		Fee:       rt.lamportsPerSignature * uint64(len(signers)),
	}
	payer := txc.load(signers[0])
	if payer.Lamports < receipt.Fee {
		return nil, errors.Errorf(errors.InsufficientFunds, "fee payer %s cannot pay fee of %d lamports", signers[0], receipt.Fee)
	}
	payer.Lamports -= receipt.Fee
	txc.accounts[signers[0]] = payer

	for i := range message.Instructions {
		compiled := message.Instructions[i]
		programID, err := message.ResolveProgramIDIndex(compiled.ProgramIDIndex)
		if err != nil {
			return nil, errors.InvalidArgumentf("instruction %d: %v", i, err)
		}
		metas, err := compiled.ResolveInstructionAccounts(&message)
		if err != nil {
			return nil, errors.InvalidArgumentf("instruction %d: %v", i, err)
		}
		if err := txc.invoke(programID, metas, compiled.Data, 1); err != nil {
			receipt.Logs = txc.logs
			rt.logFailure(receipt, err)
			return receipt, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	if err := txc.checkRent(); err != nil {
		receipt.Logs = txc.logs
		rt.logFailure(receipt, err)
		return receipt, err
	}
	receipt.Logs = txc.logs

	if commit {
		txc.commit()
		rt.processed[signature] = struct{}{}
		rt.advance()
	}
	logrus.WithFields(logrus.Fields{
		"signature":    signature.String(),
		"slot":         receipt.Slot,
		"instructions": len(message.Instructions),
		"committed":    commit,
	}).Debug("processed transaction")
	for _, line := range receipt.Logs {
		logrus.Trace(line)
	}
	return receipt, nil
}

func (rt *Runtime) logFailure(receipt *Receipt, err error) {
	logrus.WithFields(logrus.Fields{
		"signature": receipt.Signature.String(),
		"slot":      receipt.Slot,
		"status":    errors.StatusOf(err),
	}).WithError(err).Debug("transaction failed")
}

func (rt *Runtime) isRecent(hash solana.Hash) bool {
	for _, recent := range rt.blockhashes {
		if recent == hash {
			return true
		}
	}
	return false
}

// advance moves to the next slot and produces a new blockhash.
func (rt *Runtime) advance() {
	rt.slot++
	prev := rt.blockhashes[len(rt.blockhashes)-1]
	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], rt.slot)
	next := sha256.Sum256(append(prev[:], slot[:]...))
	rt.blockhashes = append(rt.blockhashes, solana.Hash(next))
	if len(rt.blockhashes) > MaxRecentBlockhashes {
		rt.blockhashes = rt.blockhashes[len(rt.blockhashes)-MaxRecentBlockhashes:]
	}
}
