package ledger

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
)

// Account is the state the ledger keeps for every address.
type Account struct {
	Lamports   uint64           `json:"lamports"`
	Owner      solana.PublicKey `json:"owner"`
	Executable bool             `json:"executable"`
	Data       []byte           `json:"data"`
}

// NewEmptyAccount is what a never-used address looks like: no lamports, owned by the system program.
func NewEmptyAccount() *Account {
	return &Account{Owner: solana.SystemProgramID}
}

func (acc *Account) Clone() *Account {
	clone := *acc
	clone.Data = append([]byte(nil), acc.Data...)
	return &clone
}

// Exists reports whether the account holds any state. Accounts that do not
// exist are dropped from the store when a transaction commits.
func (acc *Account) Exists() bool {
	return acc.Lamports > 0 || len(acc.Data) > 0 || acc.Executable || !acc.Owner.Equals(solana.SystemProgramID)
}

// Allocated reports whether a program has claimed the account: it holds data,
// is executable, or is owned by a program other than the system program.
// An address that has only received lamports is not allocated.
func (acc *Account) Allocated() bool {
	return len(acc.Data) > 0 || acc.Executable || !acc.Owner.Equals(solana.SystemProgramID)
}

// IsOwnedBy reports whether program owns the account.
func (acc *Account) IsOwnedBy(program solana.PublicKey) bool {
	return acc.Owner.Equals(program)
}

func (acc *Account) dataZeroed() bool {
	for _, b := range acc.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

func (acc *Account) equal(other *Account) bool {
	return acc.Lamports == other.Lamports &&
		acc.Owner.Equals(other.Owner) &&
		acc.Executable == other.Executable &&
		bytes.Equal(acc.Data, other.Data)
}
