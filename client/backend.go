package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
	"github.com/solanaforge/forge/program"
)

// Backend is a ledger the client submits transactions to and reads accounts from.
type Backend interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	// Submit sends a signed transaction and waits until it is confirmed.
	Submit(ctx context.Context, tx *Tx) (*ledger.Receipt, error)
	// Simulate executes a signed transaction without committing it.
	Simulate(ctx context.Context, tx *Tx) (*ledger.Receipt, error)
	// GetAccount fails with AccountNotFound for addresses without state.
	GetAccount(ctx context.Context, key solana.PublicKey) (*ledger.Account, error)
}

// LocalBackend runs transactions on an in-memory ledger.
type LocalBackend struct {
	Runtime *ledger.Runtime
}

var _ Backend = &LocalBackend{}

// NewLocalBackend creates a fresh ledger with the issuance and token programs deployed.
func NewLocalBackend(options ...ledger.Option) *LocalBackend {
	rt := ledger.NewRuntime(options...)
	program.Deploy(rt)
	return &LocalBackend{Runtime: rt}
}

func (b *LocalBackend) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return b.Runtime.LatestBlockhash(), nil
}

func (b *LocalBackend) Submit(ctx context.Context, tx *Tx) (*ledger.Receipt, error) {
	return b.Runtime.Process(ctx, tx.SolTx)
}

func (b *LocalBackend) Simulate(ctx context.Context, tx *Tx) (*ledger.Receipt, error) {
	return b.Runtime.Simulate(ctx, tx.SolTx)
}

func (b *LocalBackend) GetAccount(ctx context.Context, key solana.PublicKey) (*ledger.Account, error) {
	acc, ok := b.Runtime.GetAccount(key)
	if !ok {
		return nil, errors.Errorf(errors.AccountNotFound, "account %s not found", key)
	}
	return acc, nil
}

// RPCBackend talks to a Solana node over JSON-RPC.
type RPCBackend struct {
	SolClient    *rpc.Client
	Commitment   rpc.CommitmentType
	PollInterval time.Duration
}

var _ Backend = &RPCBackend{}

func NewRPCBackend(url string, commitment rpc.CommitmentType) *RPCBackend {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &RPCBackend{
		SolClient:    rpc.New(url),
		Commitment:   commitment,
		PollInterval: 500 * time.Millisecond,
	}
}

func (b *RPCBackend) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	recent, err := b.SolClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("could not get latest blockhash: %w", wrapRPCError(err))
	}
	if recent == nil || recent.Value == nil {
		return solana.Hash{}, errors.Errorf(errors.ExternalInterfaceFailure, "error fetching latest blockhash")
	}
	return recent.Value.Blockhash, nil
}

func (b *RPCBackend) Submit(ctx context.Context, tx *Tx) (*ledger.Receipt, error) {
	txData, err := tx.Serialize()
	if err != nil {
		return nil, fmt.Errorf("send transaction: encode transaction: %w", err)
	}
	signature, err := b.SolClient.SendEncodedTransactionWithOpts(
		ctx,
		base64.StdEncoding.EncodeToString(txData),
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: b.Commitment,
		},
	)
	if err != nil {
		return nil, wrapRPCError(err)
	}
	logrus.WithField("signature", signature.String()).Debug("submitted transaction")
	return b.confirm(ctx, signature)
}

// confirm polls the signature status until the transaction reaches the backend's commitment.
func (b *RPCBackend) confirm(ctx context.Context, signature solana.Signature) (*ledger.Receipt, error) {
	ticker := time.NewTicker(b.PollInterval)
	defer ticker.Stop()
	for {
		statuses, err := b.SolClient.GetSignatureStatuses(ctx, true, signature)
		if err != nil {
			logrus.WithError(err).Debug("could not get signature status")
		} else if statuses != nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return nil, errors.Errorf(TransactionErrorStatus(status.Err), "transaction %s failed: %v", signature, status.Err)
			}
			if b.reached(status.ConfirmationStatus) {
				return &ledger.Receipt{
					Signature: signature,
					Slot:      status.Slot,
				}, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, errors.Errorf(errors.TransactionTimedOut, "transaction %s not confirmed: %v", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (b *RPCBackend) reached(status rpc.ConfirmationStatusType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return b.Commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return b.Commitment == rpc.CommitmentProcessed
	}
	return false
}

func (b *RPCBackend) Simulate(ctx context.Context, tx *Tx) (*ledger.Receipt, error) {
	sim, err := b.SolClient.SimulateTransactionWithOpts(ctx, tx.SolTx, &rpc.SimulateTransactionOpts{
		SigVerify:  true,
		Commitment: b.Commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("could not simulate tx: %w", wrapRPCError(err))
	}
	receipt := &ledger.Receipt{}
	if len(tx.SolTx.Signatures) > 0 {
		receipt.Signature = tx.SolTx.Signatures[0]
	}
	if sim.Value == nil {
		return receipt, nil
	}
	receipt.Logs = sim.Value.Logs
	receipt.Slot = sim.Context.Slot
	if sim.Value.Err != nil {
		return receipt, errors.Errorf(TransactionErrorStatus(sim.Value.Err), "simulation failed: %v", sim.Value.Err)
	}
	return receipt, nil
}

func (b *RPCBackend) GetAccount(ctx context.Context, key solana.PublicKey) (*ledger.Account, error) {
	info, err := b.SolClient.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: b.Commitment,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		if err == rpc.ErrNotFound {
			return nil, errors.Errorf(errors.AccountNotFound, "account %s not found", key)
		}
		return nil, wrapRPCError(err)
	}
	if info == nil || info.Value == nil {
		return nil, errors.Errorf(errors.AccountNotFound, "account %s not found", key)
	}
	return &ledger.Account{
		Lamports:   info.Value.Lamports,
		Owner:      info.Value.Owner,
		Executable: info.Value.Executable,
		Data:       info.Value.Data.GetBinary(),
	}, nil
}
