package navguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSelection struct {
	active bool
}

func (s *stubSelection) HasActiveSelection() bool {
	return s.active
}

func TestGuard_OnRouteChange(t *testing.T) {
	t.Run("フロー外への離脱でクリーンアップが発火する", func(t *testing.T) {
		fired := false
		guard := New(&stubSelection{active: true}, func() { fired = true })

		ok := guard.OnRouteChange(RouteTicketType, "home")

		assert.True(t, ok)
		assert.True(t, fired)
	})

	t.Run("フロー内の遷移では発火しない", func(t *testing.T) {
		fired := false
		guard := New(&stubSelection{active: true}, func() { fired = true })

		assert.False(t, guard.OnRouteChange(RouteSeatSelection, RouteTicketType))
		assert.False(t, guard.OnRouteChange(RouteTicketType, RouteCombos))
		assert.False(t, guard.OnRouteChange(RoutePayment, RouteSeatSelection))
		assert.False(t, fired)
	})

	t.Run("選択がなければ離脱しても発火しない", func(t *testing.T) {
		fired := false
		guard := New(&stubSelection{active: false}, func() { fired = true })

		ok := guard.OnRouteChange(RoutePayment, "movie-detail")

		assert.False(t, ok)
		assert.False(t, fired)
	})

	t.Run("フロー外からの遷移では発火しない", func(t *testing.T) {
		fired := false
		guard := New(&stubSelection{active: true}, func() { fired = true })

		assert.False(t, guard.OnRouteChange("home", RouteSeatSelection))
		assert.False(t, guard.OnRouteChange("home", "settings"))
		assert.False(t, fired)
	})

	t.Run("確認画面からの離脱でも発火する", func(t *testing.T) {
		fired := false
		guard := New(&stubSelection{active: true}, func() { fired = true })

		assert.True(t, guard.OnRouteChange(RouteConfirmation, "home"))
		assert.True(t, fired)
	})
}

func TestGuard_InFlow(t *testing.T) {
	guard := New(&stubSelection{}, nil)

	assert.True(t, guard.InFlow(RouteSeatSelection))
	assert.True(t, guard.InFlow(RouteTicketType))
	assert.True(t, guard.InFlow(RouteCombos))
	assert.True(t, guard.InFlow(RoutePayment))
	assert.True(t, guard.InFlow(RouteConfirmation))
	assert.False(t, guard.InFlow("home"))
	assert.False(t, guard.InFlow("movie-detail"))
}
