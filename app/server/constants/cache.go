package constants

import "time"

const (
	CacheKeyTokenInfo = "score:token:info:%s" // %s -> token uuid
)

const (
	// token 信息缓存的寿命：凭据被刷新或吊销时会主动删除缓存，这里只是兜底，
	// 所以保持一个比会话寿命短得多的值
	CacheExpireTokenInfo = 2 * time.Minute
)
