package keysetpager

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Order defines the sort order of a single column.
type Order string

const (
	OrderASC  Order = "ASC"
	OrderDESC Order = "DESC"
)

func (o Order) Valid() bool {
	return o == OrderASC || o == OrderDESC
}

// ForOperator returns the strict comparison selecting rows beyond a cursor
// value for this column order when paginating in the given direction.
func (o Order) ForOperator(direction Direction) Operator {
	var op Operator
	switch o {
	case OrderASC:
		op = OperatorGT
	case OrderDESC:
		op = OperatorLT
	default:
		panic(fmt.Errorf("cannot map order '%s' to operator", o))
	}

	if direction == DirectionBackward {
		return op.Reverse()
	}

	return op
}

type (
	// Orderings is the natural ("forward") order of a named sort. The column
	// list must end with a unique column, otherwise rows sharing all sort
	// values may be skipped or repeated between pages.
	Orderings []OrderBy
	OrderBy   struct {
		Column string
		Order  Order
	}

	ColumnAlias = string

	// ColumnMapping maps external column aliases to fully qualified column names.
	// Use it when bare column names could cause an "ambiguous column name" error.
	// Key is an external alias, value is an internal column name.
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Order.Valid() {
		return fmt.Errorf("invalid ordering order '%s'", o.Order)
	}

	if o.Column == "" {
		return fmt.Errorf("empty ordering column name")
	}

	// Guard against SQL injection by restricting allowed characters in column names.
	if !lo.Every(_availableColumnNameSymbols, []rune(o.Column)) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

// Columns returns the ordering column names in sort order.
func (o Orderings) Columns() []string {
	return lo.Map(o, func(ordering OrderBy, _ int) string {
		return ordering.Column
	})
}

// Apply appends the ordering to a gorm query as structured ORDER BY columns,
// so that the direction of each column can later be reversed.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	for _, ordering := range o {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: ordering.Column, Raw: true},
			Desc:   ordering.Order == OrderDESC,
		})
	}

	return db
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	duplicates := lo.FindDuplicates(o.Columns())
	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate ordering column '%s'", duplicates[0])
	}

	return nil
}

// ParseSort builds Orderings from a list of strings in the format
// "column asc|desc". Column aliases are resolved via ColumnMapping.
// Returns an error if an alias is not found in the mapping.
func ParseSort(stringsOrderings []string, columnMapping ColumnMapping) (Orderings, error) {
	ret := make([]OrderBy, 0, len(stringsOrderings))
	aliases := lo.Keys(columnMapping)

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Fields(stringOrdering)
		if len(cutStringOrdering) != 2 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", stringOrdering)
		}

		columnAlias := cutStringOrdering[0]
		order := Order(strings.ToUpper(cutStringOrdering[1]))
		if !order.Valid() {
			return nil, fmt.Errorf("invalid ordering order '%s'", cutStringOrdering[1])
		}

		columnName := columnMapping[columnAlias]
		if columnName == "" {
			return nil, fmt.Errorf("invalid column alias. closest: '%s'", closest(columnAlias, aliases))
		}

		ret = append(ret, OrderBy{
			Column: columnName,
			Order:  order,
		})
	}

	return ret, nil
}

// closest returns the element of dataSet with the smallest edit distance to input.
func closest(input string, dataSet []string) string {
	minDist := math.MaxInt
	ret := ""

	for _, candidate := range dataSet {
		dist := levenshtein([]rune(candidate), []rune(input))
		if dist < minDist || (dist == minDist && candidate < ret) {
			minDist = dist
			ret = candidate
		}
	}

	return ret
}
