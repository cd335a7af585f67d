package keysetpager

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrIrreversibleOrder is returned when backward pagination meets an ORDER BY
// whose direction cannot be flipped, e.g. raw "name ASC" text.
var ErrIrreversibleOrder = errors.New("cannot reverse ordering")

// Augment turns a base query into the bounded query of a single page:
//
//  1. if the request has a cursor, rows beyond it are selected via
//     Provider.BeyondCursor;
//  2. the natural order of the sort is applied via Provider.ApplyOrder and
//     reversed for backward pagination, so the store returns the rows closest
//     to the cursor first;
//  3. sort key values are projected via Provider.ApplySelect;
//  4. the result set is limited to Request.DatasetLimit() rows.
//
// A malformed cursor fails with ErrMalformedCursor. Provider errors are
// returned wrapped.
func Augment(db *gorm.DB, req *Request, provider Provider) (*gorm.DB, error) {
	if req == nil {
		return nil, fmt.Errorf("pagination request is nil")
	}

	if provider == nil {
		return nil, fmt.Errorf("pagination provider is nil")
	}

	var err error
	if req.HasCursor() {
		keys, err := DecodeCursor(req.Cursor())
		if err != nil {
			return nil, err
		}

		db, err = provider.BeyondCursor(db, keys, req.SortName(), req.Direction())
		if err != nil {
			return nil, fmt.Errorf("cannot apply cursor filter: %w", err)
		}
	}

	db, err = provider.ApplyOrder(db, req.SortName())
	if err != nil {
		return nil, fmt.Errorf("cannot apply ordering: %w", err)
	}

	if req.Direction() == DirectionBackward {
		db, err = reverseOrder(db)
		if err != nil {
			return nil, err
		}
	}

	db, err = provider.ApplySelect(db, req.SortName())
	if err != nil {
		return nil, fmt.Errorf("cannot apply projection: %w", err)
	}

	return db.Limit(req.DatasetLimit()), nil
}

// reverseOrder flips ASC <-> DESC on every ORDER BY column of db. The flipped
// list replaces the original one (clause.OrderByColumn.Reorder).
func reverseOrder(db *gorm.DB) (*gorm.DB, error) {
	c, ok := db.Statement.Clauses["ORDER BY"]
	if !ok || c.Expression == nil {
		return db, nil
	}

	orderBy, ok := c.Expression.(clause.OrderBy)
	if !ok || orderBy.Expression != nil {
		return nil, fmt.Errorf("%w: expression ordering", ErrIrreversibleOrder)
	}

	if len(orderBy.Columns) == 0 {
		return db, nil
	}

	reversed := make([]clause.OrderByColumn, 0, len(orderBy.Columns))
	for _, column := range orderBy.Columns {
		// Raw text may already carry a direction keyword or be an expression.
		if column.Column.Raw && strings.ContainsAny(strings.TrimSpace(column.Column.Name), " \t\n(") {
			return nil, fmt.Errorf("%w: raw ordering '%s'", ErrIrreversibleOrder, column.Column.Name)
		}

		column.Desc = !column.Desc
		column.Reorder = false
		reversed = append(reversed, column)
	}
	reversed[0].Reorder = true

	return db.Clauses(clause.OrderBy{Columns: reversed}), nil
}
