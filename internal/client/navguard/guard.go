package navguard

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/pkg/logger"
)

// Route は画面遷移先の識別子
type Route string

// 購入フローを構成する画面
const (
	RouteSeatSelection Route = "seat-selection"
	RouteTicketType    Route = "ticket-type"
	RouteCombos        Route = "combos"
	RoutePayment       Route = "payment"
	RouteConfirmation  Route = "confirmation"
)

// SelectionChecker は有効な座席選択があるかを判定する窓口
type SelectionChecker interface {
	HasActiveSelection() bool
}

// Guard は購入フローからの離脱を監視する
// 購入フロー内の画面から外の画面へ遷移し、かつ有効な選択が残っている場合のみ
// クリーンアップを発火する。フロー内の行き来では発火しない
type Guard struct {
	mu        sync.Mutex
	flow      map[Route]struct{}
	selection SelectionChecker
	onAbandon func()
}

// New は新しいガードを作成
// onAbandonは離脱検出時のクリーンアップ（ホールド全解放など）
func New(selection SelectionChecker, onAbandon func()) *Guard {
	return &Guard{
		flow: map[Route]struct{}{
			RouteSeatSelection: {},
			RouteTicketType:    {},
			RouteCombos:        {},
			RoutePayment:       {},
			RouteConfirmation:  {},
		},
		selection: selection,
		onAbandon: onAbandon,
	}
}

// InFlow は画面が購入フロー内かを返す
func (g *Guard) InFlow(route Route) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.flow[route]
	return ok
}

// OnRouteChange は画面遷移を通知する
// 離脱（フロー内→フロー外）かつ有効な選択ありのときのみクリーンアップを
// 発火し、trueを返す
func (g *Guard) OnRouteChange(prev, next Route) bool {
	if !g.InFlow(prev) || g.InFlow(next) {
		return false
	}
	if g.selection == nil || !g.selection.HasActiveSelection() {
		return false
	}

	logger.Info("購入フローからの離脱を検出",
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)

	if g.onAbandon != nil {
		g.onAbandon()
	}
	return true
}
