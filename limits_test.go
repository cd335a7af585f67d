package keysetpager

import "testing"

func Test_IsWithinLimit(t *testing.T) {
	tests := []struct {
		name  string
		count int
		max   int
		want  bool
	}{
		{"zero accepted", 0, 50, true},
		{"negative rejected", -1, 50, false},
		{"within max accepted", 7, 50, true},
		{"equal max accepted", 50, 50, true},
		{"above max rejected", 51, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithinLimit(tt.count, tt.max); got != tt.want {
				t.Errorf("%s: got=%v want=%v", tt.name, got, tt.want)
			}
		})
	}
}

func Test_checkLimit(t *testing.T) {
	tests := []struct {
		name  string
		count int
		max   int
		ok    bool
	}{
		{"zero count", 0, 77, true},
		{"max count", 77, 77, true},
		{"negative count", -3, 77, false},
		{"count above max", 1000, 77, false},
		{"non positive max", 0, 0, false},
		{"negative max", 0, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkLimit(OptionFirst, tt.count, tt.max)
			if (err == nil) != tt.ok {
				t.Errorf("%s: ok=%v err=%v", tt.name, tt.ok, err)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("%s: expected validation error, got %T", tt.name, err)
			}
		})
	}
}
