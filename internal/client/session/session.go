package session

import (
	"sync"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// PurchaseSession は購入フロー1回分のローカル状態
// 選択中の座席集合とホルダーIDを保持する。サーバー側の真実とは独立で、
// スナップショットとの照合はホールドコントローラーが行う
type PurchaseSession struct {
	mu         sync.RWMutex
	showtimeID string
	holderID   string
	selected   []seat.Ref
}

// New は新しい購入セッションを作成
func New(showtimeID, holderID string) *PurchaseSession {
	return &PurchaseSession{
		showtimeID: showtimeID,
		holderID:   holderID,
	}
}

// ShowtimeID は対象の上映回IDを返す
func (s *PurchaseSession) ShowtimeID() string {
	return s.showtimeID
}

// HolderID はこのセッションのホルダーIDを返す
func (s *PurchaseSession) HolderID() string {
	return s.holderID
}

// Add は座席を選択集合に追加する。既に選択済みなら何もしない
func (s *PurchaseSession) Add(ref seat.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.selected {
		if r == ref {
			return
		}
	}
	s.selected = append(s.selected, ref)
}

// Remove は座席を選択集合から外す
func (s *PurchaseSession) Remove(ref seat.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.selected {
		if r == ref {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}

// Has は座席が選択中かを返す
func (s *PurchaseSession) Has(ref seat.Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.selected {
		if r == ref {
			return true
		}
	}
	return false
}

// Seats は選択中の座席を選択順で返す
func (s *PurchaseSession) Seats() []seat.Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]seat.Ref, len(s.selected))
	copy(out, s.selected)
	return out
}

// Size は選択中の座席数を返す
func (s *PurchaseSession) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// Clear は選択集合を空にする
func (s *PurchaseSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// HasActiveSelection は選択中の座席が1つ以上あるかを返す
// セッションタイマーや離脱ガードの発火条件として使う
func (s *PurchaseSession) HasActiveSelection() bool {
	return s.Size() > 0
}
