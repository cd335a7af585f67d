package keysetpager

// Operator defines a comparison operator for filtering by column.
// Used in keyset filtering conditions.
type Operator string

// Reverse swaps strict comparison operators: ">" becomes "<" and vice versa.
// Equality is returned unchanged.
func (o Operator) Reverse() Operator {
	switch o {
	case OperatorGT:
		return OperatorLT
	case OperatorLT:
		return OperatorGT
	default:
		return o
	}
}

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq is the equality operator. It is private because we use it
	// ONLY while building filtering conditions.
	operatorEq Operator = "="
)
