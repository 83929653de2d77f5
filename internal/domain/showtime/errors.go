package showtime

import "errors"

// Showtime ドメインのエラー定義
var (
	ErrShowtimeNotFound     = errors.New("上映回が見つかりません")
	ErrMovieTitleRequired   = errors.New("作品タイトルは必須です")
	ErrAuditoriumIDRequired = errors.New("シアターIDは必須です")
	ErrInvalidLayout        = errors.New("座席レイアウトは1行1列以上である必要があります")
)
