package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sanosuguru/go-cinema-seat-hold/internal/client/seatmap"
	"github.com/sanosuguru/go-cinema-seat-hold/internal/domain/seat"
)

// Client はシートマップサービスのHTTP APIを叩くseatmap.API実装
type Client struct {
	baseURL string
	http    *http.Client
}

// New は新しいHTTPクライアントを作成
// baseURLは末尾スラッシュなしのオリジン（例 http://localhost:8080）
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type seatStatePayload struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	Status   string `json:"status"`
	HolderID string `json:"holder_id"`
}

type seatMapPayload struct {
	ShowtimeID string             `json:"showtime_id"`
	Version    int64              `json:"version"`
	Seats      []seatStatePayload `json:"seats"`
}

type seatMutationPayload struct {
	Row      int    `json:"row"`
	Column   int    `json:"column"`
	HolderID string `json:"holder_id"`
}

type mutationResultPayload struct {
	Version int64 `json:"version"`
}

// Seats は上映回の座席スナップショットを取得する
func (c *Client) Seats(ctx context.Context, showtimeID string) (*seatmap.Snapshot, error) {
	url := fmt.Sprintf("%s/api/v1/showtimes/%s/seats", c.baseURL, showtimeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("座席スナップショット取得に失敗: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("座席スナップショット取得に失敗: status=%d", res.StatusCode)
	}

	var payload seatMapPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("レスポンスの解析に失敗: %w", err)
	}

	snap := &seatmap.Snapshot{
		ShowtimeID: payload.ShowtimeID,
		Version:    payload.Version,
		FetchedAt:  time.Now(),
		Seats:      make([]seatmap.SeatState, len(payload.Seats)),
	}
	for i, s := range payload.Seats {
		snap.Seats[i] = seatmap.SeatState{
			Ref:      seat.NewRef(s.Row, s.Column),
			Status:   seat.Status(s.Status),
			HolderID: s.HolderID,
		}
	}
	return snap, nil
}

// Acquire は座席を確保する。409はseatmap.ErrSeatConflictに写像する
func (c *Client) Acquire(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	return c.mutate(ctx, showtimeID, "acquire", ref, holderID)
}

// Release は座席のホールドを解放する
func (c *Client) Release(ctx context.Context, showtimeID string, ref seat.Ref, holderID string) (int64, error) {
	return c.mutate(ctx, showtimeID, "release", ref, holderID)
}

func (c *Client) mutate(ctx context.Context, showtimeID, action string, ref seat.Ref, holderID string) (int64, error) {
	url := fmt.Sprintf("%s/api/v1/showtimes/%s/seats/%s", c.baseURL, showtimeID, action)
	body, err := json.Marshal(seatMutationPayload{
		Row:      ref.Row,
		Column:   ref.Column,
		HolderID: holderID,
	})
	if err != nil {
		return 0, fmt.Errorf("リクエストの組み立てに失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("座席操作に失敗: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		var result mutationResultPayload
		if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
			return 0, fmt.Errorf("レスポンスの解析に失敗: %w", err)
		}
		return result.Version, nil
	case http.StatusConflict:
		io.Copy(io.Discard, res.Body)
		return 0, seatmap.ErrSeatConflict
	default:
		return 0, fmt.Errorf("座席操作に失敗: status=%d", res.StatusCode)
	}
}
