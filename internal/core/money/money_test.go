package money

import (
	"testing"

	"campaign-shop/internal/core/domain"
)

func TestToCopper(t *testing.T) {
	tests := []struct {
		name  string
		purse domain.Purse
		want  int
	}{
		{"empty", domain.Purse{}, 0},
		{"ten gold", domain.Purse{Gold: 10}, 1000},
		{"one of each", domain.Purse{Platinum: 1, Gold: 1, Electrum: 1, Silver: 1, Copper: 1}, 1161},
		{"gold plus loose copper", domain.Purse{Gold: 1, Copper: 10}, 110},
		{"copper only", domain.Purse{Copper: 110}, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToCopper(tt.purse); got != tt.want {
				t.Errorf("ToCopper(%+v) = %d, want %d", tt.purse, got, tt.want)
			}
		})
	}
}

func TestFromCopper(t *testing.T) {
	tests := []struct {
		name  string
		total int
		want  domain.Purse
	}{
		{"zero", 0, domain.Purse{}},
		{"four hundred", 400, domain.Purse{Gold: 4}},
		{"full ladder", 1161, domain.Purse{Platinum: 1, Gold: 1, Electrum: 1, Silver: 1, Copper: 1}},
		{"electrum boundary", 150, domain.Purse{Gold: 1, Electrum: 1}},
		{"nine copper", 9, domain.Purse{Copper: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromCopper(tt.total); got != tt.want {
				t.Errorf("FromCopper(%d) = %+v, want %+v", tt.total, got, tt.want)
			}
		})
	}
}

func TestFromCopper_NegativeClampsToZero(t *testing.T) {
	if got := FromCopper(-250); got != (domain.Purse{}) {
		t.Errorf("FromCopper(-250) = %+v, want empty purse", got)
	}
}

func TestFromCopper_RoundTrip(t *testing.T) {
	for n := 0; n <= 5000; n++ {
		if got := ToCopper(FromCopper(n)); got != n {
			t.Fatalf("ToCopper(FromCopper(%d)) = %d", n, got)
		}
	}

	// Spot-check well past the dense range.
	for _, n := range []int{12_345, 99_999, 1_000_000, 123_456_789} {
		if got := ToCopper(FromCopper(n)); got != n {
			t.Fatalf("ToCopper(FromCopper(%d)) = %d", n, got)
		}
	}
}

func TestFromCopper_AllFieldsNonNegative(t *testing.T) {
	for _, n := range []int{-10, 0, 49, 50, 99, 100, 999, 1000, 7777} {
		if p := FromCopper(n); !p.IsValid() {
			t.Errorf("FromCopper(%d) produced negative denomination: %+v", n, p)
		}
	}
}
