package token

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Sizes of the SPL token program account layouts.
const (
	MintSize    = 82
	AccountSize = 165
)

type AccountState uint8

const (
	Uninitialized AccountState = iota
	Initialized
	Frozen
)

// Mint is the SPL mint layout (the fungible asset descriptor).
type Mint struct {
	MintAuthority   *solana.PublicKey `json:"mint_authority,omitempty"`
	Supply          uint64            `json:"supply"`
	Decimals        uint8             `json:"decimals"`
	IsInitialized   bool              `json:"is_initialized"`
	FreezeAuthority *solana.PublicKey `json:"freeze_authority,omitempty"`
}

// Account is the SPL token account layout (the holding account).
type Account struct {
	Mint            solana.PublicKey  `json:"mint"`
	Owner           solana.PublicKey  `json:"owner"`
	Amount          uint64            `json:"amount"`
	Delegate        *solana.PublicKey `json:"delegate,omitempty"`
	State           AccountState      `json:"state"`
	IsNative        *uint64           `json:"is_native,omitempty"`
	DelegatedAmount uint64            `json:"delegated_amount"`
	CloseAuthority  *solana.PublicKey `json:"close_authority,omitempty"`
}

func (m Mint) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeOptionalKey(enc, m.MintAuthority); err != nil {
		return err
	}
	if err := enc.WriteUint64(m.Supply, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsInitialized); err != nil {
		return err
	}
	return writeOptionalKey(enc, m.FreezeAuthority)
}

func (m *Mint) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if m.MintAuthority, err = readOptionalKey(dec); err != nil {
		return err
	}
	if m.Supply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if m.IsInitialized, err = dec.ReadBool(); err != nil {
		return err
	}
	m.FreezeAuthority, err = readOptionalKey(dec)
	return err
}

func (a Account) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Mint[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Amount, binary.LittleEndian); err != nil {
		return err
	}
	if err := writeOptionalKey(enc, a.Delegate); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(a.State)); err != nil {
		return err
	}
	if a.IsNative == nil {
		if err := enc.WriteBytes(make([]byte, 12), false); err != nil {
			return err
		}
	} else {
		if err := enc.WriteUint32(1, binary.LittleEndian); err != nil {
			return err
		}
		if err := enc.WriteUint64(*a.IsNative, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err := enc.WriteUint64(a.DelegatedAmount, binary.LittleEndian); err != nil {
		return err
	}
	return writeOptionalKey(enc, a.CloseAuthority)
}

func (a *Account) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	mint, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	a.Mint = solana.PublicKeyFromBytes(mint)
	owner, err := dec.ReadNBytes(32)
	if err != nil {
		return err
	}
	a.Owner = solana.PublicKeyFromBytes(owner)
	if a.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if a.Delegate, err = readOptionalKey(dec); err != nil {
		return err
	}
	state, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	a.State = AccountState(state)
	tag, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	native, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	if tag == 1 {
		a.IsNative = &native
	}
	if a.DelegatedAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	a.CloseAuthority, err = readOptionalKey(dec)
	return err
}

// SPL state uses a 4 byte tag for optional keys and always reserves the key's space.
func writeOptionalKey(enc *bin.Encoder, key *solana.PublicKey) error {
	if key == nil {
		return enc.WriteBytes(make([]byte, 36), false)
	}
	if err := enc.WriteUint32(1, binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes(key[:], false)
}

func readOptionalKey(dec *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		key := solana.PublicKeyFromBytes(raw)
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

func encode(v interface{}, size int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBinEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	if buf.Len() != size {
		return nil, fmt.Errorf("encoded %T is %d bytes, expected %d", v, buf.Len(), size)
	}
	return buf.Bytes(), nil
}

func (m *Mint) Encode() ([]byte, error) {
	return encode(m, MintSize)
}

func (a *Account) Encode() ([]byte, error) {
	return encode(a, AccountSize)
}

func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, fmt.Errorf("mint data is %d bytes, expected %d", len(data), MintSize)
	}
	mint := &Mint{}
	if err := bin.NewBinDecoder(data).Decode(mint); err != nil {
		return nil, err
	}
	return mint, nil
}

func DecodeAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, fmt.Errorf("token account data is %d bytes, expected %d", len(data), AccountSize)
	}
	account := &Account{}
	if err := bin.NewBinDecoder(data).Decode(account); err != nil {
		return nil, err
	}
	return account, nil
}
