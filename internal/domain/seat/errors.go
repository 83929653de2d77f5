package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound     = errors.New("座席が見つかりません")
	ErrSeatOutOfLayout  = errors.New("座席がレイアウトの範囲外です")
	ErrSeatSold         = errors.New("座席は販売済みです")
	ErrSeatHeldByOther  = errors.New("座席は他のユーザーに確保されています")
	ErrHolderIDRequired = errors.New("ホルダーIDは必須です")
)
