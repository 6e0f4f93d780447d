package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormStateTransitions(t *testing.T) {
	var state FormState
	require.Equal(t, FormClosed, state.Mode())
	_, ok := state.EditingID()
	require.False(t, ok)

	state.OpenEdit(12)
	id, ok := state.EditingID()
	require.True(t, ok)
	require.Equal(t, int64(12), id)
	method, path := state.Target()
	require.Equal(t, "PUT", method)
	require.Equal(t, "/products/12", path)

	state.OpenCreate()
	require.Equal(t, FormCreate, state.Mode())
	_, ok = state.EditingID()
	require.False(t, ok, "create resets the editing id")
	method, path = state.Target()
	require.Equal(t, "POST", method)
	require.Equal(t, "/products", path)

	state.OpenEdit(3)
	state.Close()
	require.Equal(t, FormClosed, state.Mode())
	_, ok = state.EditingID()
	require.False(t, ok)
	require.Equal(t, "closed", state.Mode().String())
}
