package keysetpager

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Executor runs an augmented query against the store. Errors are returned to
// the caller of the pager as-is (wrapped); the pager never retries.
type Executor[T any] interface {
	Execute(ctx context.Context, db *gorm.DB) ([]AugmentedRow[T], error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc[T any] func(ctx context.Context, db *gorm.DB) ([]AugmentedRow[T], error)

// Execute - implements Executor.
func (f ExecutorFunc[T]) Execute(ctx context.Context, db *gorm.DB) ([]AugmentedRow[T], error) {
	return f(ctx, db)
}

// GORMExecutor runs the query through gorm. Every row is scanned twice: the
// columns aliased with SortKeyAlias become AugmentedRow.Keys, and the whole
// row is scanned into T with gorm.DB.ScanRows, which ignores the alias
// columns.
type GORMExecutor[T any] struct{}

// Execute - implements Executor.
func (GORMExecutor[T]) Execute(ctx context.Context, db *gorm.DB) ([]AugmentedRow[T], error) {
	tx := db.WithContext(ctx)

	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to execute paginated query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	keyColumns, err := sortKeyColumns(columns)
	if err != nil {
		return nil, err
	}

	var ret []AugmentedRow[T]
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		// Plain values first: gorm may scan unknown columns into
		// sql.RawBytes, after which the row cannot be scanned again.
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan sort keys: %w", err)
		}

		var record T
		if err = tx.ScanRows(rows, &record); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		keys := make([]any, 0, len(keyColumns))
		for _, idx := range keyColumns {
			keys = append(keys, values[idx])
		}

		ret = append(ret, AugmentedRow[T]{Keys: keys, Record: record})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}

	return ret, nil
}

// sortKeyColumns returns positions of the SortKeyAlias columns, in key order.
func sortKeyColumns(columns []string) ([]int, error) {
	positions := make(map[int]int)
	for idx, column := range columns {
		suffix, ok := strings.CutPrefix(strings.ToLower(column), sortKeyAliasPrefix)
		if !ok {
			continue
		}

		i, err := strconv.Atoi(suffix)
		if err != nil || i < 0 {
			continue
		}

		positions[i] = idx
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("result set has no sort key columns, was the projection applied?")
	}

	ret := make([]int, 0, len(positions))
	for i := range len(positions) {
		idx, ok := positions[i]
		if !ok {
			return nil, fmt.Errorf("result set misses sort key column '%s'", SortKeyAlias(i))
		}

		ret = append(ret, idx)
	}

	return ret, nil
}

var _ Executor[struct{}] = GORMExecutor[struct{}]{}
