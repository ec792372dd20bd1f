package forge

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/solanaforge/forge/errors"
)

// Lamports per SOL is 10^9.
const NativeDecimals = 9

// AmountBlockchain is a big integer amount in base units, as the ledger stores it.
type AmountBlockchain big.Int

// AmountHumanReadable is a decimal amount as a human expects it for readability.
type AmountHumanReadable decimal.Decimal

func (amount AmountBlockchain) String() string {
	bigInt := big.Int(amount)
	return bigInt.String()
}

// Int converts an AmountBlockchain into *big.Int
func (amount AmountBlockchain) Int() *big.Int {
	bigInt := big.Int(amount)
	return &bigInt
}

// Uint64 converts an AmountBlockchain into uint64; callers should check IsUint64 first.
func (amount AmountBlockchain) Uint64() uint64 {
	bigInt := big.Int(amount)
	return bigInt.Uint64()
}

// IsUint64 reports whether the amount is representable as a token balance.
func (amount AmountBlockchain) IsUint64() bool {
	bigInt := big.Int(amount)
	return bigInt.IsUint64()
}

// Use the underlying big.Int.Mul()
func (amount *AmountBlockchain) Mul(x *AmountBlockchain) AmountBlockchain {
	prod := new(big.Int)
	prod.Set((*big.Int)(amount))
	return AmountBlockchain(*prod.Mul(prod, x.Int()))
}

func (amount *AmountBlockchain) IsZero() bool {
	return amount.Int().Sign() == 0
}

func (amount *AmountBlockchain) ToHuman(decimals int32) AmountHumanReadable {
	dec := decimal.NewFromBigInt(amount.Int(), -decimals)
	return AmountHumanReadable(dec)
}

// NewAmountBlockchainFromUint64 creates a new AmountBlockchain from a uint64
func NewAmountBlockchainFromUint64(u64 uint64) AmountBlockchain {
	bigInt := new(big.Int).SetUint64(u64)
	return AmountBlockchain(*bigInt)
}

// Pow10 returns 10^exp as an AmountBlockchain.
func Pow10(exp uint8) AmountBlockchain {
	ten := big.NewInt(10)
	return AmountBlockchain(*ten.Exp(ten, big.NewInt(int64(exp)), nil))
}

// ScaleSupply returns initialSupply * 10^decimals, failing with SupplyOverflow
// if the product does not fit a 64 bit token balance.
func ScaleSupply(initialSupply uint64, decimals uint8) (uint64, error) {
	supply := NewAmountBlockchainFromUint64(initialSupply)
	factor := Pow10(decimals)
	scaled := supply.Mul(&factor)
	if !scaled.IsUint64() {
		return 0, errors.SupplyOverflowf("%d * 10^%d = %s exceeds u64", initialSupply, decimals, scaled.String())
	}
	return scaled.Uint64(), nil
}

// CheckedAdd adds two token balances, failing with SupplyOverflow instead of wrapping.
func CheckedAdd(a uint64, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.SupplyOverflowf("%d + %d exceeds u64", a, b)
	}
	return sum, nil
}

func (amount AmountHumanReadable) String() string {
	return decimal.Decimal(amount).String()
}

var _ json.Marshaler = AmountHumanReadable{}
var _ json.Unmarshaler = &AmountHumanReadable{}
func (b AmountHumanReadable) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *AmountHumanReadable) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	str := strings.Trim(string(p), "\"")
	decimal, err := decimal.NewFromString(str)
	if err != nil {
		return err
	}
	*b = AmountHumanReadable(decimal)
	return nil
}

var _ json.Marshaler = AmountBlockchain{}
var _ json.Unmarshaler = &AmountBlockchain{}

func (b AmountBlockchain) MarshalJSON() ([]byte, error) {
	return []byte("\"" + b.String() + "\""), nil
}

func (b *AmountBlockchain) UnmarshalJSON(p []byte) error {
	if string(p) == "null" {
		return nil
	}
	str := strings.Trim(string(p), "\"")
	var z big.Int
	_, ok := z.SetString(str, 0)
	if !ok {
		return fmt.Errorf("not a valid big integer: %s", p)
	}
	*b = AmountBlockchain(z)
	return nil
}
