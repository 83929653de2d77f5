package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/hold"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// acquireScript は座席ホールドの取得をアトミックに行う
// 空席なら新規確保、同一ホルダーなら期限延長、他ホルダーなら拒否
// 戻り値は {取得成否, 上映回バージョン}
const acquireScript = `
local cur = redis.call("GET", KEYS[1])
if cur == false then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	redis.call("SADD", KEYS[2], ARGV[3])
	return {1, redis.call("INCR", KEYS[3])}
elseif cur == ARGV[1] then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	return {1, tonumber(redis.call("GET", KEYS[3]) or "0")}
else
	return {0, tonumber(redis.call("GET", KEYS[3]) or "0")}
end
`

// releaseScript は所有者照合のうえホールドを削除する
// 非所有者の解放は何もしない。戻り値は {削除有無, 上映回バージョン}
const releaseScript = `
local cur = redis.call("GET", KEYS[1])
if cur == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("SREM", KEYS[2], ARGV[2])
	return {1, redis.call("INCR", KEYS[3])}
end
return {0, tonumber(redis.call("GET", KEYS[3]) or "0")}
`

// HoldStore はRedis上のホールド保管層
// 座席ごとに1キー（値はホルダーID）をSET NX相当で管理し、TTLによる
// 自然失効をRedisに任せる
type HoldStore struct {
	client *redis.Client
}

// NewHoldStore は新しいRedisホールドストアを作成する
func NewHoldStore(client *redis.Client) *HoldStore {
	return &HoldStore{client: client}
}

// Acquire は座席を確保する。同一ホルダーの再取得はTTL延長として扱う
func (s *HoldStore) Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string, ttl time.Duration) (int64, error) {
	keys := []string{s.holdKey(showtimeID, ref), s.setKey(showtimeID), s.verKey(showtimeID)}
	res, err := s.client.Eval(ctx, acquireScript, keys,
		holderID, ttl.Milliseconds(), member(ref)).Slice()
	if err != nil {
		return 0, fmt.Errorf("ホールド取得に失敗: %w", err)
	}
	ok, ver, err := parsePair(res)
	if err != nil {
		return 0, err
	}
	if !ok {
		return ver, hold.ErrSeatHeldByOther
	}
	return ver, nil
}

// Release は座席のホールドを解放する。非所有者の解放は何もしない成功
func (s *HoldStore) Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	keys := []string{s.holdKey(showtimeID, ref), s.setKey(showtimeID), s.verKey(showtimeID)}
	res, err := s.client.Eval(ctx, releaseScript, keys, holderID, member(ref)).Slice()
	if err != nil {
		return 0, fmt.Errorf("ホールド解放に失敗: %w", err)
	}
	_, ver, err := parsePair(res)
	return ver, err
}

// ReleaseAllByHolder は指定ホルダーの全ホールドを解放し、解放した座席を返す
func (s *HoldStore) ReleaseAllByHolder(ctx context.Context, showtimeID, holderID string) ([]seat.Ref, int64, error) {
	members, err := s.client.SMembers(ctx, s.setKey(showtimeID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("ホールド一覧の取得に失敗: %w", err)
	}

	var released []seat.Ref
	var ver int64
	for _, m := range members {
		ref, ok := parseMember(m)
		if !ok {
			continue
		}
		keys := []string{s.holdKey(showtimeID, ref), s.setKey(showtimeID), s.verKey(showtimeID)}
		res, err := s.client.Eval(ctx, releaseScript, keys, holderID, m).Slice()
		if err != nil {
			return released, ver, fmt.Errorf("ホールド解放に失敗: %w", err)
		}
		deleted, v, err := parsePair(res)
		if err != nil {
			return released, ver, err
		}
		ver = v
		if deleted {
			released = append(released, ref)
		}
	}
	return released, ver, nil
}

// ByShowtime は上映回の有効なホールド一覧と現在のバージョンを返す
func (s *HoldStore) ByShowtime(ctx context.Context, showtimeID string) ([]hold.Hold, int64, error) {
	members, err := s.client.SMembers(ctx, s.setKey(showtimeID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("ホールド一覧の取得に失敗: %w", err)
	}

	now := time.Now()
	var holds []hold.Hold
	var stale []interface{}

	pipe := s.client.Pipeline()
	getCmds := make(map[string]*redis.StringCmd, len(members))
	ttlCmds := make(map[string]*redis.DurationCmd, len(members))
	for _, m := range members {
		ref, ok := parseMember(m)
		if !ok {
			stale = append(stale, m)
			continue
		}
		key := s.holdKey(showtimeID, ref)
		getCmds[m] = pipe.Get(ctx, key)
		ttlCmds[m] = pipe.PTTL(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, 0, fmt.Errorf("ホールドの読み取りに失敗: %w", err)
	}

	for _, m := range members {
		cmd, ok := getCmds[m]
		if !ok {
			continue
		}
		holderID, err := cmd.Result()
		if err == redis.Nil {
			// TTL失効後に残ったインデックスを掃除する
			stale = append(stale, m)
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("ホールドの読み取りに失敗: %w", err)
		}
		ref, _ := parseMember(m)
		expiresAt := now.Add(hold.DefaultTTL)
		if ttl, err := ttlCmds[m].Result(); err == nil && ttl > 0 {
			expiresAt = now.Add(ttl)
		}
		holds = append(holds, hold.Hold{
			ShowtimeID: showtimeID,
			Seat:       ref,
			HolderID:   holderID,
			ExpiresAt:  expiresAt,
		})
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.setKey(showtimeID), stale...).Err(); err != nil {
			return nil, 0, fmt.Errorf("インデックスの掃除に失敗: %w", err)
		}
	}

	ver, err := s.client.Get(ctx, s.verKey(showtimeID)).Int64()
	if err == redis.Nil {
		ver = 0
	} else if err != nil {
		return nil, 0, fmt.Errorf("バージョンの読み取りに失敗: %w", err)
	}
	return holds, ver, nil
}

func (s *HoldStore) holdKey(showtimeID string, ref seat.Ref) string {
	return fmt.Sprintf("hold:%s:%d:%d", showtimeID, ref.Row, ref.Column)
}

func (s *HoldStore) setKey(showtimeID string) string {
	return fmt.Sprintf("holdset:%s", showtimeID)
}

func (s *HoldStore) verKey(showtimeID string) string {
	return fmt.Sprintf("holdver:%s", showtimeID)
}

func member(ref seat.Ref) string {
	return strconv.Itoa(ref.Row) + ":" + strconv.Itoa(ref.Column)
}

func parseMember(m string) (seat.Ref, bool) {
	parts := strings.SplitN(m, ":", 2)
	if len(parts) != 2 {
		return seat.Ref{}, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return seat.Ref{}, false
	}
	return seat.NewRef(row, col), true
}

// parsePair はLuaスクリプトの {フラグ, バージョン} 応答を解釈する
func parsePair(res []interface{}) (bool, int64, error) {
	if len(res) != 2 {
		return false, 0, fmt.Errorf("予期しないスクリプト応答: %v", res)
	}
	flag, ok1 := res[0].(int64)
	ver, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("予期しないスクリプト応答: %v", res)
	}
	return flag == 1, ver, nil
}
