// Package keysetpager provides keyset ("cursor") pagination for GORM.
//
// Overview
//
// Pages are addressed by opaque cursors that encode the sort column values
// of a boundary row, never its offset, so concurrent inserts and deletes
// elsewhere in the data set do not shift pages. Arguments follow the Relay
// connection model: first/after paginate forward, last/before backward.
//
// Key concepts
//   - Request: canonical pagination arguments produced by NewRequest from raw
//     Options (first-supplied key wins on duplicates).
//   - EncodeCursor/DecodeCursor: the type-preserving cursor codec.
//   - Provider: expresses cursor filtering, ordering and projection of a
//     named sort. Sorts is the default implementation over column lists.
//   - Augment: base query + Request + Provider -> bounded query fetching
//     one probe row beyond the page.
//   - Assemble: fetched rows -> Page with HasPreviousPage/HasNextPage and
//     start/end cursors, rows always in natural order.
//   - Pager: runs the whole sequence with an Executor.
//
// Usage:
//
//	pager := keysetpager.NewPager[User](keysetpager.Sorts{
//		"id": {{Column: "id", Order: keysetpager.OrderASC}},
//	}, keysetpager.DefaultConfig())
//
//	page, err := pager.Paginate(ctx, db.Model(&User{}), "id",
//		keysetpager.First(20), keysetpager.After(token))
package keysetpager
