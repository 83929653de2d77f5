package seat

import "strconv"

// Status は座席の状態を表す
type Status string

const (
	StatusFree Status = "free"
	StatusHeld Status = "held"
	StatusSold Status = "sold"
)

// Ref は上映回内の座席位置（行・列）を表す
// 行・列は1始まり
type Ref struct {
	Row    int
	Column int
}

// NewRef は座席位置を作成する
func NewRef(row, column int) Ref {
	return Ref{Row: row, Column: column}
}

// DisplayID は表示用の座席IDを返す（1行1列 → "A1"、27行 → "AA"）
func (r Ref) DisplayID() string {
	return rowLetters(r.Row) + strconv.Itoa(r.Column)
}

// String はDisplayIDと同じ表記を返す
func (r Ref) String() string {
	return r.DisplayID()
}

// InLayout は座席位置がレイアウト内に収まっているかを返す
func (r Ref) InLayout(rows, columns int) bool {
	return r.Row >= 1 && r.Row <= rows && r.Column >= 1 && r.Column <= columns
}

// Seat は観客から見える座席の状態を表す
// 真実はショータイム＆シートマップサービス側にあり、クライアントは
// スナップショットとしてのみ保持する
type Seat struct {
	Ref      Ref
	Status   Status
	HolderID string // StatusHeldのときのみ設定される
}

// IsFree は座席が空いているかを返す
func (s *Seat) IsFree() bool {
	return s.Status == StatusFree
}

// IsSold は座席が販売済みかを返す
func (s *Seat) IsSold() bool {
	return s.Status == StatusSold
}

// IsHeldBy は座席が指定ホルダーに確保されているかを返す
func (s *Seat) IsHeldBy(holderID string) bool {
	return s.Status == StatusHeld && holderID != "" && s.HolderID == holderID
}

// rowLetters は1始まりの行番号を英字表記に変換する（1 → "A"、27 → "AA"）
func rowLetters(row int) string {
	if row < 1 {
		return "?"
	}
	letters := ""
	for row > 0 {
		row--
		letters = string(rune('A'+row%26)) + letters
		row /= 26
	}
	return letters
}
