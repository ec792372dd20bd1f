package ledger

// AccountStorageOverhead is charged on top of an account's data length.
const AccountStorageOverhead = 128

// Rent parameters, matching the Solana defaults.
type Rent struct {
	LamportsPerByteYear uint64 `yaml:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `yaml:"exemption_threshold"`
}

var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the lamports an account of the given data size needs to be rent exempt.
func (r Rent) MinimumBalance(size int) uint64 {
	return (AccountStorageOverhead + uint64(size)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

func (r Rent) IsExempt(lamports uint64, size int) bool {
	return lamports >= r.MinimumBalance(size)
}
