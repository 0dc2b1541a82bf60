package sort

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		order Order
		want  bool
	}{
		{Distance, true},
		{Rating, true},
		{Match, true},
		{"", false},
		{"price", false},
	}
	for _, tt := range tests {
		if got := tt.order.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.order, got, tt.want)
		}
	}
}
