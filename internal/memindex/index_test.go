package memindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocateFindsAllOccurrences(t *testing.T) {
	reference := []byte("ACGTACGTACGT")
	idx := New(reference, 4)

	positions, err := idx.Locate([]byte("ACGT"))
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{0, 4, 8}, positions)
}

func TestLocateNoMatch(t *testing.T) {
	idx := New([]byte("ACGTACGT"), 4)

	positions, err := idx.Locate([]byte("TTTT"))
	require.NoError(t, err)
	require.Empty(t, positions)
}

func TestLocateRejectsWrongLength(t *testing.T) {
	idx := New([]byte("ACGTACGT"), 4)

	_, err := idx.Locate([]byte("ACG"))
	require.Error(t, err)
}

func TestNewOnTooShortReference(t *testing.T) {
	idx := New([]byte("AC"), 4)

	positions, err := idx.Locate([]byte("ACGT"))
	require.NoError(t, err)
	require.Empty(t, positions)
}
