package keysetpager

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnknownSort is returned when a provider cannot resolve a sort name.
	ErrUnknownSort = errors.New("unknown sort")
	// ErrCursorMismatch is returned when well-formed cursor keys cannot be
	// applied to the requested sort.
	ErrCursorMismatch = errors.New("cursor does not match sort")
)

// Sorts is a Provider over named column lists.
//
// Sort columns must be NOT NULL. A NULL sort key still appears in page
// cursors, but BeyondCursor rejects it with ErrCursorMismatch: NULL never
// compares, so no keyset filter can continue past such a row. Wrap nullable
// columns, e.g. "COALESCE(name, '')" through a view or generated column.
//
//	sorts := keysetpager.Sorts{
//		"newest": {{Column: "created_at", Order: keysetpager.OrderDESC}, {Column: "id", Order: keysetpager.OrderDESC}},
//		"name":   {{Column: "name", Order: keysetpager.OrderASC}, {Column: "id", Order: keysetpager.OrderASC}},
//	}
type Sorts map[string]Orderings

// Validate checks every registered sort.
func (s Sorts) Validate() error {
	for _, name := range lo.Keys(s) {
		if err := s[name].validate(); err != nil {
			return fmt.Errorf("sort '%s': %w", name, err)
		}
	}

	return nil
}

// Orderings resolves a sort name to its validated column list.
func (s Sorts) Orderings(sortName string) (Orderings, error) {
	orderings, ok := s[sortName]
	if !ok {
		return nil, fmt.Errorf("%w '%s'. closest: '%s'", ErrUnknownSort, sortName, closest(sortName, lo.Keys(s)))
	}

	if err := orderings.validate(); err != nil {
		return nil, fmt.Errorf("sort '%s': %w", sortName, err)
	}

	return orderings, nil
}

// BeyondCursor - implements Provider.
func (s Sorts) BeyondCursor(db *gorm.DB, keys []any, sortName string, direction Direction) (*gorm.DB, error) {
	orderings, err := s.Orderings(sortName)
	if err != nil {
		return nil, err
	}

	if !direction.Valid() {
		return nil, fmt.Errorf("invalid direction '%s'", direction)
	}

	if len(keys) != len(orderings) {
		return nil, fmt.Errorf("%w: %d cursor keys for %d columns of sort '%s'",
			ErrCursorMismatch, len(keys), len(orderings), sortName)
	}

	// NULL never compares, a filter against it would silently drop every row.
	if idx := slices.Index(keys, nil); idx != -1 {
		return nil, fmt.Errorf("%w: null value for column '%s', sort columns must be NOT NULL",
			ErrCursorMismatch, orderings[idx].Column)
	}

	exp := newKeysetDNF(orderings, keys, direction).toGORMExpression()
	if exp == nil {
		return db, nil
	}

	return db.Clauses(exp), nil
}

// ApplyOrder - implements Provider.
func (s Sorts) ApplyOrder(db *gorm.DB, sortName string) (*gorm.DB, error) {
	orderings, err := s.Orderings(sortName)
	if err != nil {
		return nil, err
	}

	return orderings.Apply(db), nil
}

// ApplySelect - implements Provider. Keeps the columns already selected on db
// ("*" when none) and appends every sort column aliased with SortKeyAlias.
//
// A projection built with arguments, e.g. db.Select("price * ? AS total", rate),
// is kept as well: the aliased columns are appended to its SQL.
func (s Sorts) ApplySelect(db *gorm.DB, sortName string) (*gorm.DB, error) {
	orderings, err := s.Orderings(sortName)
	if err != nil {
		return nil, err
	}

	keyColumns := make([]string, 0, len(orderings))
	for i, ordering := range orderings {
		keyColumns = append(keyColumns, fmt.Sprintf("%s AS %s", ordering.Column, SortKeyAlias(i)))
	}

	if c, ok := db.Statement.Clauses["SELECT"]; ok && c.Expression != nil {
		if _, built := c.Expression.(clause.Select); !built {
			return appendToSelectExpression(db, c.Expression, keyColumns)
		}
	}

	selects := slices.Clone(db.Statement.Selects)
	if len(selects) == 0 {
		selects = []string{"*"}
	}

	return db.Select(append(selects, keyColumns...)), nil
}

// appendToSelectExpression extends a raw SELECT expression with columns.
// Column names never contain placeholders, so the expression vars stay valid.
func appendToSelectExpression(db *gorm.DB, exp clause.Expression, columns []string) (*gorm.DB, error) {
	suffix := "," + strings.Join(columns, ",")

	switch et := exp.(type) {
	case clause.Expr:
		et.SQL += suffix
		return db.Clauses(clause.Select{Expression: et}), nil
	case clause.NamedExpr:
		et.SQL += suffix
		return db.Clauses(clause.Select{Expression: et}), nil
	default:
		return nil, fmt.Errorf("cannot extend select expression of type %T", exp)
	}
}

var _ Provider = Sorts(nil)
