package storage

import (
	"fmt"

	"ledger/internal/core"
)

func fmtRecordErr(kind string, i int, err error) error {
	return fmt.Errorf("%s record %d: %w", kind, i, err)
}

// Corrupt wraps a parse failure as core.ErrCorruptStore.
func Corrupt(source string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrCorruptStore, source, err)
}

// PersistFailure wraps a write failure as core.ErrPersistFailure.
func PersistFailure(target string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrPersistFailure, target, err)
}
