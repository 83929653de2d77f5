package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// HoldStore はメモリ上のホールド保管層
// Redisなしの起動とユニットテストで使用する。期限切れのホールドは
// 読み取り時に遅延削除されるほか、worker.ExpiredHoldReaperが定期的に掃除する
type HoldStore struct {
	mu       sync.Mutex
	holds    map[string]map[seat.Ref]hold.Hold
	versions map[string]int64
}

// NewHoldStore は新しいメモリホールドストアを作成する
func NewHoldStore() *HoldStore {
	return &HoldStore{
		holds:    make(map[string]map[seat.Ref]hold.Hold),
		versions: make(map[string]int64),
	}
}

// Acquire は座席を確保する。同一ホルダーの再取得はTTL延長として扱う
func (s *HoldStore) Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRef := s.holds[showtimeID]
	if byRef == nil {
		byRef = make(map[seat.Ref]hold.Hold)
		s.holds[showtimeID] = byRef
	}

	if existing, ok := byRef[ref]; ok && !existing.IsExpired() {
		if existing.HolderID != holderID {
			return 0, hold.ErrSeatHeldByOther
		}
		// リニューアル：期限だけを押し出す。見かけの状態は変わらないので
		// バージョンは据え置く
		byRef[ref] = hold.New(showtimeID, ref, holderID, ttl)
		return s.versions[showtimeID], nil
	}

	byRef[ref] = hold.New(showtimeID, ref, holderID, ttl)
	s.versions[showtimeID]++
	return s.versions[showtimeID], nil
}

// Release は座席のホールドを解放する。所有者でなければ何もせず成功を返す
func (s *HoldStore) Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRef := s.holds[showtimeID]
	if existing, ok := byRef[ref]; ok && !existing.IsExpired() && existing.HolderID == holderID {
		delete(byRef, ref)
		s.versions[showtimeID]++
	}
	return s.versions[showtimeID], nil
}

// ReleaseAllByHolder は指定ホルダーの全ホールドを解放する
func (s *HoldStore) ReleaseAllByHolder(ctx context.Context, showtimeID, holderID string) ([]seat.Ref, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRef := s.holds[showtimeID]
	var released []seat.Ref
	for ref, h := range byRef {
		if !h.IsExpired() && h.HolderID == holderID {
			released = append(released, ref)
		}
	}
	for _, ref := range released {
		delete(byRef, ref)
	}
	if len(released) > 0 {
		s.versions[showtimeID]++
	}
	sortRefs(released)
	return released, s.versions[showtimeID], nil
}

// ByShowtime は上映回の有効なホールド一覧と現在のバージョンを返す
func (s *HoldStore) ByShowtime(ctx context.Context, showtimeID string) ([]hold.Hold, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(showtimeID)

	byRef := s.holds[showtimeID]
	holds := make([]hold.Hold, 0, len(byRef))
	for _, h := range byRef {
		holds = append(holds, h)
	}
	sort.Slice(holds, func(i, j int) bool {
		a, b := holds[i].Seat, holds[j].Seat
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Column < b.Column
	})
	return holds, s.versions[showtimeID], nil
}

// PurgeExpired は全上映回の期限切れホールドを削除し、削除数を返す
func (s *HoldStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for showtimeID := range s.holds {
		purged += s.pruneLocked(showtimeID)
	}
	return purged, nil
}

// pruneLocked は期限切れホールドを削除する。呼び出し元がロックを保持すること
// 期限切れはサーバー真実の変化なのでバージョンを進める
func (s *HoldStore) pruneLocked(showtimeID string) int {
	byRef := s.holds[showtimeID]
	var expired []seat.Ref
	for ref, h := range byRef {
		if h.IsExpired() {
			expired = append(expired, ref)
		}
	}
	for _, ref := range expired {
		delete(byRef, ref)
	}
	if len(expired) > 0 {
		s.versions[showtimeID]++
	}
	return len(expired)
}

func sortRefs(refs []seat.Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Column < refs[j].Column
	})
}
