package keysetpager

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// AugmentedRow is a single fetched row: the values of the sort columns in
// sort order plus the application record.
type AugmentedRow[T any] struct {
	Keys   []any
	Record T
}

// Page is a bounded slice of the data set together with the cursors needed
// to move to its neighbours.
type Page[T any] struct {
	// Rows in the natural (forward) order of the sort, whatever the
	// direction used to fetch them.
	Rows []T `json:"rows"`
	// HasPreviousPage reports whether rows exist before StartCursor.
	HasPreviousPage bool `json:"hasPreviousPage"`
	// HasNextPage reports whether rows exist after EndCursor.
	HasNextPage bool `json:"hasNextPage"`
	// StartCursor points at the first row. Empty for an empty page.
	StartCursor string `json:"startCursor,omitempty"`
	// EndCursor points at the last row. Empty for an empty page.
	EndCursor string `json:"endCursor,omitempty"`
}

// Assemble builds a Page out of the rows returned by an augmented query.
//
// Rows are expected in execution order, i.e. reversed natural order for
// backward pagination, and may contain one extra probe row beyond
// Request.Limit(). The probe is dropped; its presence sets the flag of the
// side being fetched. The flag of the side the cursor cuts into is assumed
// from the cursor presence:
//
//	forward:  HasPreviousPage = cursor present, HasNextPage = probe present
//	backward: HasPreviousPage = probe present,  HasNextPage = cursor present
func Assemble[T any](rows []AugmentedRow[T], req *Request) (*Page[T], error) {
	if req == nil {
		return nil, fmt.Errorf("pagination request is nil")
	}

	requested := rows[:min(req.Limit(), len(rows))]
	overfetched := len(rows) > len(requested)

	natural := slices.Clone(requested)
	if req.Direction() == DirectionBackward {
		slices.Reverse(natural)
	}

	page := &Page[T]{
		Rows: lo.Map(natural, func(row AugmentedRow[T], _ int) T {
			return row.Record
		}),
	}

	if req.Direction() == DirectionBackward {
		page.HasPreviousPage, page.HasNextPage = overfetched, req.HasCursor()
	} else {
		page.HasPreviousPage, page.HasNextPage = req.HasCursor(), overfetched
	}

	if len(natural) == 0 {
		return page, nil
	}

	var err error
	page.StartCursor, err = EncodeCursor(natural[0].Keys)
	if err != nil {
		return nil, fmt.Errorf("cannot build start cursor: %w", err)
	}

	page.EndCursor, err = EncodeCursor(natural[len(natural)-1].Keys)
	if err != nil {
		return nil, fmt.Errorf("cannot build end cursor: %w", err)
	}

	return page, nil
}
