package errors

import (
	e "errors"
	"fmt"
)

type Status string

// An account that may only be created once was already created.
const AlreadyInitialized Status = "AlreadyInitialized"

// Scaling a supply by 10^decimals (or adding to an existing supply) exceeds 64 bits.
const SupplyOverflow Status = "SupplyOverflow"

// The signer does not hold the authority required for the operation, e.g. the mint authority.
const Unauthorized Status = "Unauthorized"

// The derived or supplied asset (mint) address is already in use.
const AssetAlreadyExists Status = "AssetAlreadyExists"

// An error surfaced by a collaborator (token interface, ledger, rpc) that has no more specific status.
const ExternalInterfaceFailure Status = "ExternalInterfaceFailure"

// A required signature is missing from the instruction's accounts.
const MissingSigner Status = "MissingSigner"

// An account that must be written was passed read-only.
const AccountNotWritable Status = "AccountNotWritable"

// An account is owned by a different program than expected.
const InvalidAccountOwner Status = "InvalidAccountOwner"

// An account address does not match its required derivation or program id.
const InvalidAddress Status = "InvalidAddress"

// An account does not hold enough lamports to be rent exempt.
const NotRentExempt Status = "NotRentExempt"

// Account data could not be decoded, or is of the wrong type.
const InvalidAccountData Status = "InvalidAccountData"

// Instruction data or arguments are invalid.
const InvalidArgument Status = "InvalidArgument"

// The funding account cannot cover the lamports requested.
const InsufficientFunds Status = "InsufficientFunds"

// A required account does not exist.
const AccountNotFound Status = "AccountNotFound"

// The system program was asked to create an account that already exists.
const AccountAlreadyInUse Status = "AccountAlreadyInUse"

// A transaction signature is missing or does not verify.
const InvalidSignature Status = "InvalidSignature"

// An instruction targets a program the runtime does not know.
const UnknownProgram Status = "UnknownProgram"

// A transaction with the same signature was already processed.
const TransactionExists Status = "TransactionExists"

// The transaction's recent blockhash has expired or was never produced.
const TransactionTimedOut Status = "TransactionTimedOut"

type Error struct {
	Status  Status
	Message string
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusOf returns the status of the first *Error in err's chain.
// Errors without a status are reported as ExternalInterfaceFailure.
func StatusOf(err error) Status {
	if err == nil {
		return ""
	}
	var xe *Error
	if e.As(err, &xe) {
		return xe.Status
	}
	return ExternalInterfaceFailure
}

// Is reports whether err carries the given status.
func Is(err error, status Status) bool {
	return err != nil && StatusOf(err) == status
}

func AlreadyInitializedf(format string, args ...interface{}) error {
	return Errorf(AlreadyInitialized, format, args...)
}

func SupplyOverflowf(format string, args ...interface{}) error {
	return Errorf(SupplyOverflow, format, args...)
}

func Unauthorizedf(format string, args ...interface{}) error {
	return Errorf(Unauthorized, format, args...)
}

func AssetAlreadyExistsf(format string, args ...interface{}) error {
	return Errorf(AssetAlreadyExists, format, args...)
}

func MissingSignerf(format string, args ...interface{}) error {
	return Errorf(MissingSigner, format, args...)
}

func InvalidArgumentf(format string, args ...interface{}) error {
	return Errorf(InvalidArgument, format, args...)
}

func InvalidAccountDataf(format string, args ...interface{}) error {
	return Errorf(InvalidAccountData, format, args...)
}

// External tags an untyped collaborator error as ExternalInterfaceFailure.
// Errors that already carry a status pass through unchanged.
func External(err error) error {
	if err == nil {
		return nil
	}
	var xe *Error
	if e.As(err, &xe) {
		return err
	}
	return &Error{
		Status:  ExternalInterfaceFailure,
		Message: err.Error(),
	}
}
