package hold

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// Store はホールドの保管層のインターフェース
// 排他性の保証はStoreの責務：同一座席に同時に存在できるホールドは1つだけ
//
// Acquire/Release/ReleaseAllByHolderは上映回ごとの変更バージョンを返す。
// バージョンは状態が変わるたびに単調増加し、クライアントは古いポーリング
// 結果を決定的に捨てるために利用する。
type Store interface {
	// Acquire は座席を確保する。空席なら新規確保、同一ホルダーの再取得なら
	// TTLを延長（リニューアル）、他ホルダー確保中ならErrSeatHeldByOtherを返す
	Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string, ttl time.Duration) (int64, error)

	// Release は座席のホールドを解放する。呼び出し元が確保していない座席の
	// 解放は何もせず成功として扱う（所有者照合のうえ削除）
	Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error)

	// ReleaseAllByHolder は指定ホルダーの全ホールドを解放し、解放した座席を返す
	ReleaseAllByHolder(ctx context.Context, showtimeID, holderID string) ([]seat.Ref, int64, error)

	// ByShowtime は上映回の有効なホールド一覧と現在のバージョンを返す
	ByShowtime(ctx context.Context, showtimeID string) ([]Hold, int64, error)
}
