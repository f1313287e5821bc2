package sofascore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidYear 表示赛季不在联赛的有效赛季列表中。
	ErrInvalidYear = errors.New("invalid season")
	// ErrInvalidLeague 表示联赛既不是数字 ID 也不是已知名称。
	ErrInvalidLeague = errors.New("invalid league")
	// ErrInvalidPosition 表示位置过滤名称不受支持。
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidAccumulation 表示统计累计方式不受支持。
	ErrInvalidAccumulation = errors.New("invalid accumulation")
	// ErrInvalidMatchURL 表示无法从 URL 中解析比赛 ID。
	ErrInvalidMatchURL = errors.New("invalid match url")
)

// StatusError 表示上游返回了无法处理的状态码。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sofascore %s returned status %d", e.URL, e.StatusCode)
}

func invalidYear(year, league string, valid []string) error {
	return fmt.Errorf("%w: %s is not a valid season for league %s, valid seasons: %v", ErrInvalidYear, year, league, valid)
}
