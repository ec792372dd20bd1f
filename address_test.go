package forge_test

import (
	. "github.com/solanaforge/forge"
)

func (s *ForgeTestSuite) TestValidateAddress() {
	require := s.Require()
	require.NoError(ValidateAddress("Hzn3n914JaSpnxo5mBbmuCDmGL6mxWN9Ac2HzEXFSGtb"))
	require.ErrorContains(ValidateAddress(""), "invalid base58 encoding")
	require.ErrorContains(ValidateAddress("abc"), "must be 32 bytes")

	key, err := Address("Hzn3n914JaSpnxo5mBbmuCDmGL6mxWN9Ac2HzEXFSGtb").PublicKey()
	require.NoError(err)
	require.Equal(Address("Hzn3n914JaSpnxo5mBbmuCDmGL6mxWN9Ac2HzEXFSGtb"), AddressFromPublicKey(key))
}
