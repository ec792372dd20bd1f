package client

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/solanaforge/forge/errors"
)

// SPL token program error codes surfaced as custom program errors.
const (
	TokenErrorOwnerMismatch uint64 = 0x4
	TokenErrorFixedSupply   uint64 = 0x5
	TokenErrorOverflow      uint64 = 0xe
)

var customErrorPattern = regexp.MustCompile(`custom program error: 0x([0-9a-f]+)\b`)

// CheckError maps a JSON-RPC error message to an error status.
func CheckError(err error) errors.Status {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "blockhash not found") {
		return errors.TransactionTimedOut
	}
	if strings.Contains(msg, "transaction already in block chain") ||
		strings.Contains(msg, "transaction has already been processed") {
		return errors.TransactionExists
	}
	if match := customErrorPattern.FindStringSubmatch(msg); match != nil {
		if code, err := strconv.ParseUint(match[1], 16, 64); err == nil {
			if status, ok := customErrorStatus(code); ok {
				return status
			}
		}
	}
	if strings.Contains(msg, "insufficient funds") ||
		strings.Contains(msg, "insufficient lamports") {
		return errors.InsufficientFunds
	}
	if strings.Contains(msg, "already in use") {
		return errors.AccountAlreadyInUse
	}
	if strings.Contains(msg, "missing required signature") {
		return errors.MissingSigner
	}
	if strings.Contains(msg, "signature verification failure") {
		return errors.InvalidSignature
	}
	if strings.Contains(msg, "not found") {
		return errors.AccountNotFound
	}
	return errors.ExternalInterfaceFailure
}

func customErrorStatus(code uint64) (errors.Status, bool) {
	switch code {
	case TokenErrorOwnerMismatch, TokenErrorFixedSupply:
		return errors.Unauthorized, true
	case TokenErrorOverflow:
		return errors.SupplyOverflow, true
	}
	return "", false
}

// TransactionErrorStatus maps the "err" field of a signature status or
// simulation result, as decoded from JSON, to an error status. Examples:
//
//	"BlockhashNotFound"
//	{"InstructionError": [0, {"Custom": 4}]}
//	{"InstructionError": [1, "MissingRequiredSignature"]}
func TransactionErrorStatus(txErr interface{}) errors.Status {
	switch v := txErr.(type) {
	case nil:
		return ""
	case string:
		switch v {
		case "BlockhashNotFound":
			return errors.TransactionTimedOut
		case "AlreadyProcessed":
			return errors.TransactionExists
		case "InsufficientFundsForFee":
			return errors.InsufficientFunds
		case "AccountNotFound":
			return errors.AccountNotFound
		case "SignatureFailure":
			return errors.InvalidSignature
		}
	case map[string]interface{}:
		if _, ok := v["InsufficientFundsForRent"]; ok {
			return errors.NotRentExempt
		}
		if ixErr, ok := v["InstructionError"].([]interface{}); ok && len(ixErr) == 2 {
			return instructionErrorStatus(ixErr[1])
		}
	}
	return errors.ExternalInterfaceFailure
}

func instructionErrorStatus(detail interface{}) errors.Status {
	switch v := detail.(type) {
	case string:
		switch v {
		case "InsufficientFunds":
			return errors.InsufficientFunds
		case "MissingRequiredSignature":
			return errors.MissingSigner
		case "AccountAlreadyInitialized":
			return errors.AlreadyInitialized
		case "IncorrectProgramId", "InvalidAccountOwner", "ExternalAccountDataModified":
			return errors.InvalidAccountOwner
		case "InvalidAccountData", "AccountDataTooSmall":
			return errors.InvalidAccountData
		case "InvalidArgument", "InvalidInstructionData":
			return errors.InvalidArgument
		case "ReadonlyDataModified", "ReadonlyLamportChange":
			return errors.AccountNotWritable
		}
	case map[string]interface{}:
		if code, ok := asUint64(v["Custom"]); ok {
			if status, ok := customErrorStatus(code); ok {
				return status
			}
		}
	}
	return errors.ExternalInterfaceFailure
}

func asUint64(value interface{}) (uint64, bool) {
	switch n := value.(type) {
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	}
	return 0, false
}

// wrapRPCError attaches the status CheckError finds to an rpc error.
func wrapRPCError(err error) error {
	if err == nil {
		return nil
	}
	status := CheckError(err)
	if status == errors.ExternalInterfaceFailure {
		return errors.External(err)
	}
	return errors.Errorf(status, "%v", err)
}
