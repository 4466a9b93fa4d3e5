package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escalopa/chain-migrate/test"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kms.db")
	test.SeedKeyDB(t, path, 5)

	count, err := Verify(path)
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestVerify_MissingDatabase(t *testing.T) {
	t.Parallel()

	_, err := Verify(filepath.Join(t.TempDir(), "kms.db"))
	require.Error(t, err)
}
