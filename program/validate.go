package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/solanaforge/forge/errors"
	"github.com/solanaforge/forge/ledger"
)

// Constraint is a precondition on one account of an instruction.
type Constraint func(ctx *ledger.InvokeContext, key solana.PublicKey) error

// AccountSpec names an instruction account and the constraints it must satisfy.
type AccountSpec struct {
	Name        string
	Constraints []Constraint
}

func Account(name string, constraints ...Constraint) AccountSpec {
	return AccountSpec{Name: name, Constraints: constraints}
}

// Validate checks the instruction's accounts against specs, in order,
// and returns the first violation. On success the keys are returned by name.
func Validate(ctx *ledger.InvokeContext, specs ...AccountSpec) (map[string]solana.PublicKey, error) {
	metas := ctx.Accounts()
	if len(metas) < len(specs) {
		return nil, errors.InvalidArgumentf("expected %d accounts, got %d", len(specs), len(metas))
	}
	keys := make(map[string]solana.PublicKey, len(specs))
	for i, spec := range specs {
		key := metas[i].PublicKey
		for _, constraint := range spec.Constraints {
			if err := constraint(ctx, key); err != nil {
				return nil, fmt.Errorf("account %s: %w", spec.Name, err)
			}
		}
		keys[spec.Name] = key
	}
	return keys, nil
}

func Signer(ctx *ledger.InvokeContext, key solana.PublicKey) error {
	if !ctx.IsSigner(key) {
		return errors.MissingSignerf("%s must sign", key)
	}
	return nil
}

func Mut(ctx *ledger.InvokeContext, key solana.PublicKey) error {
	if !ctx.IsWritable(key) {
		return errors.Errorf(errors.AccountNotWritable, "%s must be writable", key)
	}
	return nil
}

// Executable requires a deployed program account.
func Executable(ctx *ledger.InvokeContext, key solana.PublicKey) error {
	if !ctx.Load(key).Executable {
		return errors.Errorf(errors.InvalidArgument, "%s is not an executable program", key)
	}
	return nil
}

// Address requires the account to be exactly expected, e.g. a derived address or a program id.
func Address(expected solana.PublicKey) Constraint {
	return func(ctx *ledger.InvokeContext, key solana.PublicKey) error {
		if !key.Equals(expected) {
			return errors.Errorf(errors.InvalidAddress, "expected %s, got %s", expected, key)
		}
		return nil
	}
}

// OneOf requires the account to be one of the given addresses.
func OneOf(allowed ...solana.PublicKey) Constraint {
	return func(ctx *ledger.InvokeContext, key solana.PublicKey) error {
		for _, candidate := range allowed {
			if key.Equals(candidate) {
				return nil
			}
		}
		return errors.Errorf(errors.InvalidAddress, "%s is not an accepted program", key)
	}
}

// OwnedBy requires that an account, once allocated, is owned by one of the programs.
// An address holding only lamports has not been claimed yet and passes.
func OwnedBy(programs ...solana.PublicKey) Constraint {
	return func(ctx *ledger.InvokeContext, key solana.PublicKey) error {
		acc := ctx.Load(key)
		if !acc.Allocated() {
			return nil
		}
		for _, program := range programs {
			if acc.IsOwnedBy(program) {
				return nil
			}
		}
		return errors.Errorf(errors.InvalidAccountOwner, "%s is owned by %s", key, acc.Owner)
	}
}

// RentExempt requires that an account, if it already holds data, is rent exempt.
func RentExempt(ctx *ledger.InvokeContext, key solana.PublicKey) error {
	acc := ctx.Load(key)
	if len(acc.Data) == 0 {
		return nil
	}
	if !ctx.Rent().IsExempt(acc.Lamports, len(acc.Data)) {
		return errors.Errorf(errors.NotRentExempt, "%s holds %d lamports, needs %d", key, acc.Lamports, ctx.Rent().MinimumBalance(len(acc.Data)))
	}
	return nil
}
