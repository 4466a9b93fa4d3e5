package store

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Verify opens the key database at path read-only and walks every entry,
// returning how many keys it holds. An incomplete copy fails to open or to
// iterate.
func Verify(path string) (int, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return 0, errors.Wrapf(err, "open key database %s", path)
	}
	defer func() { _ = db.Close() }()

	var count int

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if _, err := it.Item().ValueCopy(nil); err != nil {
				return errors.Wrapf(err, "read key %q", it.Item().Key())
			}
			count++
		}

		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "walk key database %s", path)
	}

	return count, nil
}
