package forge_test

import (
	"math"

	. "github.com/solanaforge/forge"
	"github.com/solanaforge/forge/errors"
)

func (s *ForgeTestSuite) TestNewAmountBlockchainFromUint64() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(123)
	require.Equal(uint64(123), amount.Uint64())
	require.Equal("123", amount.String())
	require.True(amount.IsUint64())
}

func (s *ForgeTestSuite) TestToHuman() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(50000)
	require.Equal("500", amount.ToHuman(2).String())

	fractional := NewAmountBlockchainFromUint64(10300)
	require.Equal("10.3", fractional.ToHuman(3).String())
	bz, err := fractional.ToHuman(3).MarshalJSON()
	require.NoError(err)
	require.Equal(`"10.3"`, string(bz))
}

func (s *ForgeTestSuite) TestScaleSupply() {
	require := s.Require()
	vectors := []struct {
		supply   uint64
		decimals uint8
		expected uint64
		overflow bool
	}{
		{500, 2, 50000, false},
		{0, 9, 0, false},
		{1, 0, 1, false},
		{1_000_000, 9, 1_000_000_000_000_000, false},
		{18, 18, 18_000_000_000_000_000_000, false},
		{19, 18, 0, true},
		{math.MaxUint64, 0, math.MaxUint64, false},
		{math.MaxUint64, 1, 0, true},
		{1, 19, 10_000_000_000_000_000_000, false},
		{1, 20, 0, true},
		{2, 19, 0, true},
	}
	for _, v := range vectors {
		scaled, err := ScaleSupply(v.supply, v.decimals)
		if v.overflow {
			require.Error(err)
			require.Equal(errors.SupplyOverflow, errors.StatusOf(err))
			require.Zero(scaled)
		} else {
			require.NoError(err)
			require.Equal(v.expected, scaled, "supply=%d decimals=%d", v.supply, v.decimals)
		}
	}
}

func (s *ForgeTestSuite) TestCheckedAdd() {
	require := s.Require()
	sum, err := CheckedAdd(100, 50)
	require.NoError(err)
	require.EqualValues(150, sum)

	_, err = CheckedAdd(math.MaxUint64, 1)
	require.True(errors.Is(err, errors.SupplyOverflow))
}

func (s *ForgeTestSuite) TestAmountJSON() {
	require := s.Require()
	amount := NewAmountBlockchainFromUint64(42)
	bz, err := amount.MarshalJSON()
	require.NoError(err)
	require.Equal(`"42"`, string(bz))

	var decoded AmountBlockchain
	require.NoError(decoded.UnmarshalJSON([]byte(`"0x10"`)))
	require.EqualValues(16, decoded.Uint64())
	require.Error(decoded.UnmarshalJSON([]byte(`"abc"`)))
}
