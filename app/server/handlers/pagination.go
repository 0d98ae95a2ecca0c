package handlers

import (
	"strconv"

	"student-score-network/app/server/constants"
)

// 查询参数 skip / limit 的解析：缺省为 0 / 100 ，负数和无法解析的值按缺省处理
func (a *App) parseSkipLimit(skipStr string, limitStr string) (int, int) {
	skip := 0
	if skipStr != "" {
		if parsed, err := strconv.Atoi(skipStr); err == nil && parsed > 0 {
			skip = parsed
		}
	}

	limit := constants.ScoreListDefaultLimit
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed >= 0 {
			limit = parsed
		}
	}

	return skip, limit
}
