package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef_DisplayID(t *testing.T) {
	tests := []struct {
		name     string
		ref      Ref
		expected string
	}{
		{"1行1列", NewRef(1, 1), "A1"},
		{"2行5列", NewRef(2, 5), "B5"},
		{"26行10列", NewRef(26, 10), "Z10"},
		{"27行1列", NewRef(27, 1), "AA1"},
		{"52行3列", NewRef(52, 3), "AZ3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.DisplayID())
			assert.Equal(t, tt.expected, tt.ref.String())
		})
	}
}

func TestRef_InLayout(t *testing.T) {
	tests := []struct {
		name     string
		ref      Ref
		expected bool
	}{
		{"範囲内", NewRef(3, 4), true},
		{"端の座席", NewRef(5, 8), true},
		{"行が0", NewRef(0, 1), false},
		{"行が超過", NewRef(6, 1), false},
		{"列が超過", NewRef(1, 9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ref.InLayout(5, 8))
		})
	}
}

func TestSeat_IsHeldBy(t *testing.T) {
	t.Run("自分が確保している座席", func(t *testing.T) {
		s := &Seat{Ref: NewRef(1, 1), Status: StatusHeld, HolderID: "holder-1"}
		assert.True(t, s.IsHeldBy("holder-1"))
		assert.False(t, s.IsHeldBy("holder-2"))
	})

	t.Run("空席はどのホルダーにも属さない", func(t *testing.T) {
		s := &Seat{Ref: NewRef(1, 1), Status: StatusFree}
		assert.False(t, s.IsHeldBy("holder-1"))
		assert.True(t, s.IsFree())
	})

	t.Run("空のホルダーIDは一致しない", func(t *testing.T) {
		s := &Seat{Ref: NewRef(1, 1), Status: StatusHeld, HolderID: ""}
		assert.False(t, s.IsHeldBy(""))
	})

	t.Run("販売済み座席", func(t *testing.T) {
		s := &Seat{Ref: NewRef(1, 1), Status: StatusSold}
		assert.True(t, s.IsSold())
		assert.False(t, s.IsFree())
	})
}
