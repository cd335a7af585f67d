package keysetpager

import "testing"

func Test_Operator_Reverse(t *testing.T) {
	tests := []struct {
		name     string
		in       Operator
		reversed Operator
	}{
		{"GT reverses to LT", OperatorGT, OperatorLT},
		{"LT reverses to GT", OperatorLT, OperatorGT},
		{"EQ is unchanged", operatorEq, operatorEq},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Reverse(); got != tt.reversed {
				t.Errorf("%s: Reverse=%v want %v", tt.name, got, tt.reversed)
			}
		})
	}
}
