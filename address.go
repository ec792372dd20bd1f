package forge

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/gagliardetto/solana-go"
)

// Address is a base58 encoded ed25519 public key, e.g. an owner, a mint or a holding account.
type Address string

// ValidateAddress checks that the address decodes to a 32 byte public key.
func ValidateAddress(address Address) error {
	decoded := base58.Decode(string(address))
	if len(decoded) == 0 {
		return fmt.Errorf("invalid address %s: invalid base58 encoding", address)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("invalid address %s: must be 32 bytes (got %d)", address, len(decoded))
	}
	return nil
}

func (address Address) PublicKey() (solana.PublicKey, error) {
	if err := ValidateAddress(address); err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBase58(string(address))
}

func AddressFromPublicKey(key solana.PublicKey) Address {
	return Address(key.String())
}
