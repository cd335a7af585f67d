package keysetpager

import (
	"fmt"

	"gorm.io/gorm/clause"
)

type (
	tConjunct struct {
		Column   string
		Value    any
		Operator Operator
	}

	tDisjunct []tConjunct

	// tDNF represents the disjunctive normal form (DNF) of a logical expression.
	// Each disjunct is joined by OR, and each disjunct consists of a list of
	// conjuncts which are joined by AND. A conjunct is the value of
	// Operator(Column, Value).
	//
	// Thus:
	//
	//	DNF = X1 OR X2 ... OR Xn, where Xi = Ai1 AND Ai2 ... AND Aim.
	//	DNF = (A11 AND A12 AND A13) OR (A21 AND A22 AND A23), for n=2, m=3.
	//
	//  Where (A11 AND A12 AND A13), (A21 AND A22 AND A23) are disjuncts and
	//  A11, A12, A13, A21, A22, A23 are conjuncts.
	tDNF []tDisjunct
)

// newKeysetDNF expands a row position into the keyset comparison selecting
// rows strictly beyond it. For orderings [(C1, O1), (C2, O2) ... (Cn, On)] and
// cursor values [V1, V2 ... Vn] the result is:
//
//	(C1 op1 V1) OR (C1 = V1 AND C2 op2 V2) OR ... OR (C1 = V1 AND ... AND Cn opn Vn)
//
// where opi is chosen by Order.ForOperator for the column order and the
// pagination direction. This is the lexicographic tuple comparison honoring
// the order of every column. Orderings and values must have equal length.
func newKeysetDNF(orderings Orderings, values []any, direction Direction) tDNF {
	dnf := make(tDNF, 0, len(orderings))
	for i, ordering := range orderings {
		disjunct := make(tDisjunct, 0, i+1)
		for j := range orderings[:i] {
			disjunct = append(disjunct, tConjunct{
				Column:   orderings[j].Column,
				Value:    values[j],
				Operator: operatorEq,
			})
		}

		disjunct = append(disjunct, tConjunct{
			Column:   ordering.Column,
			Value:    values[i],
			Operator: ordering.Order.ForOperator(direction),
		})

		dnf = append(dnf, disjunct)
	}

	return dnf
}

// toGORMExpression converts a conjunct of the form Operator(Column, Value)
// into an SQL condition "Column Operator ?" represented as a clause.Expression.
//
// Example:
//
//	tConjunct = { Column: "id", Operator: ">", Value: 123}
//
// Result:
//
//	clause.Expr{SQL: "id > ?", Vars: [123]}
func (c tConjunct) toGORMExpression() clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", c.Column, c.Operator),
		Vars: []any{c.Value},
	}
}

// toGORMExpression converts a disjunct (K1, K2, K3) into a gorm expression
// "K1 AND K2 AND K3" where each Ki is expanded via tConjunct.toGORMExpression.
func (d tDisjunct) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(d))
	for _, conjunct := range d {
		andExpressions = append(andExpressions, conjunct.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toGORMExpression converts a DNF (tDNF) into a clause.Expression.
// For each disjunct it calls tDisjunct.toGORMExpression and joins disjuncts with OR.
func (d tDNF) toGORMExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(d))

	for _, disjunct := range d {
		andExpressions := disjunct.toGORMExpression()
		if andExpressions == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpressions)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}
