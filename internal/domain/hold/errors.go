package hold

import "errors"

// Hold ドメインのエラー定義
var (
	ErrSeatHeldByOther    = errors.New("座席は他のホルダーに確保されています")
	ErrHoldNotFound       = errors.New("ホールドが見つかりません")
	ErrShowtimeIDRequired = errors.New("上映回IDは必須です")
	ErrHolderIDRequired   = errors.New("ホルダーIDは必須です")
)
