package client

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/program"
)

// Tx wraps a solana.Transaction with the extra keys needed to sign it.
type Tx struct {
	SolTx            *solana.Transaction
	transientSigners []solana.PrivateKey
}

func NewTxFrom(solTx *solana.Transaction) *Tx {
	return &Tx{
		SolTx: solTx,
	}
}

// NewInitializeUserTx builds the unsigned registration transaction for user.
func NewInitializeUserTx(user solana.PublicKey, recentBlockhash solana.Hash) (*Tx, error) {
	ix, err := program.NewInitializeUserInstruction(user)
	if err != nil {
		return nil, err
	}
	solTx, err := solana.NewTransaction([]solana.Instruction{ix}, recentBlockhash, solana.TransactionPayer(user))
	if err != nil {
		return nil, err
	}
	return NewTxFrom(solTx), nil
}

// NewCreateTokenTx builds the token creation transaction. The mint key is
// added as a transient signer; the payer still has to sign.
func NewCreateTokenTx(payer solana.PublicKey, mint solana.PrivateKey, tokenProgram solana.PublicKey, args program.CreateTokenArgs, recentBlockhash solana.Hash) (*Tx, error) {
	ix, err := program.NewCreateTokenInstruction(payer, mint.PublicKey(), tokenProgram, args)
	if err != nil {
		return nil, err
	}
	solTx, err := solana.NewTransaction([]solana.Instruction{ix}, recentBlockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, err
	}
	tx := NewTxFrom(solTx)
	tx.AddTransientSigner(mint)
	return tx, nil
}

// Hash returns the tx hash or id, for Solana it's signature
func (tx Tx) Hash() string {
	if tx.SolTx != nil && len(tx.SolTx.Signatures) > 0 {
		return tx.SolTx.Signatures[0].String()
	}
	return ""
}

// Sighash returns the serialized message every signer signs.
func (tx Tx) Sighash() ([]byte, error) {
	if tx.SolTx == nil {
		return nil, errors.New("transaction not initialized")
	}
	messageContent, err := tx.SolTx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("unable to encode message for signing: %w", err)
	}
	return messageContent, nil
}

// Some instructions on solana require new accounts to sign the transaction
// in addition to the funding account.  These are transient signers are not
// sensitive and the key material only needs to live long enough to sign the transaction.
func (tx *Tx) AddTransientSigner(transientSigner solana.PrivateKey) {
	tx.transientSigners = append(tx.transientSigners, transientSigner)
}

// Sign signs the transaction with keys and the transient signers, in the order the message requires.
func (tx *Tx) Sign(keys ...solana.PrivateKey) error {
	messageContent, err := tx.Sighash()
	if err != nil {
		return err
	}
	available := append(append([]solana.PrivateKey{}, keys...), tx.transientSigners...)
	signers := tx.SolTx.Message.Signers()
	signatures := make([]solana.Signature, len(signers))
	for i, signer := range signers {
		found := false
		for _, key := range available {
			if !key.PublicKey().Equals(signer) {
				continue
			}
			sig, err := key.Sign(messageContent)
			if err != nil {
				return fmt.Errorf("unable to sign with %s: %v", signer, err)
			}
			signatures[i] = sig
			found = true
			break
		}
		if !found {
			return fmt.Errorf("missing key for signer %s", signer)
		}
	}
	tx.SolTx.Signatures = signatures
	return nil
}

// Serialize returns the serialized tx
func (tx Tx) Serialize() ([]byte, error) {
	if tx.SolTx == nil {
		return []byte{}, errors.New("transaction not initialized")
	}
	return tx.SolTx.MarshalBinary()
}
