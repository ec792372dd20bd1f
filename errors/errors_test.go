package errors_test

import (
	e "errors"
	"fmt"
	"testing"

	"github.com/solanaforge/forge/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	vectors := []struct {
		err    error
		status errors.Status
	}{
		{nil, ""},
		{errors.SupplyOverflowf("too big"), errors.SupplyOverflow},
		{fmt.Errorf("wrapped: %w", errors.Unauthorizedf("not the authority")), errors.Unauthorized},
		{e.New("connection reset"), errors.ExternalInterfaceFailure},
	}
	for _, v := range vectors {
		require.Equal(t, v.status, errors.StatusOf(v.err))
	}
}

func TestErrorMessage(t *testing.T) {
	err := errors.AlreadyInitializedf("user record %s", "abc")
	require.EqualError(t, err, "AlreadyInitialized: user record abc")
	require.True(t, errors.Is(err, errors.AlreadyInitialized))
	require.False(t, errors.Is(err, errors.Unauthorized))
	require.False(t, errors.Is(nil, errors.Unauthorized))
}

func TestExternal(t *testing.T) {
	require.Nil(t, errors.External(nil))

	typed := errors.AssetAlreadyExistsf("mint in use")
	require.Equal(t, typed, errors.External(typed))

	wrapped := errors.External(e.New("rpc: 503"))
	require.True(t, errors.Is(wrapped, errors.ExternalInterfaceFailure))
	require.EqualError(t, wrapped, "ExternalInterfaceFailure: rpc: 503")
}
