package keysetpager

import (
	"fmt"

	"gorm.io/gorm"
)

// Provider knows how to express cursor filtering, ordering and projection of
// a named sort against the underlying store. Every method is a pure query
// transformation; the pager only sequences them and never inspects the
// produced predicate or column set.
//
// Sorts is the ready-made implementation for column lists.
type Provider interface {
	// BeyondCursor restricts db to rows strictly after (DirectionForward) or
	// strictly before (DirectionBackward) the row whose sort key values are
	// keys, according to the named sort.
	BeyondCursor(db *gorm.DB, keys []any, sortName string, direction Direction) (*gorm.DB, error)
	// ApplyOrder orders db by the natural (forward) order of the named sort.
	// The pager flips the ORDER BY columns itself for backward pagination.
	ApplyOrder(db *gorm.DB, sortName string) (*gorm.DB, error)
	// ApplySelect projects the sort key values of the named sort next to the
	// record columns, aliased with SortKeyAlias.
	ApplySelect(db *gorm.DB, sortName string) (*gorm.DB, error)
}

const sortKeyAliasPrefix = "keyset_"

// SortKeyAlias returns the result column alias for the i-th sort key.
func SortKeyAlias(i int) string {
	return fmt.Sprintf("%s%d", sortKeyAliasPrefix, i)
}
