package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-score-network/app/server/constants"
	"student-score-network/app/server/models"
)

func (a *App) bearerCredential(c echo.Context) (string, error) {
	// 提取 token
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing auth token")
	}

	splits := strings.Split(authHeader, " ")
	if len(splits) != 2 {
		return "", fmt.Errorf("invalid auth header: %s", authHeader)
	}

	if strings.ToLower(splits[0]) != "bearer" {
		return "", fmt.Errorf("unknown auth method: %s", splits[0])
	}

	return splits[1], nil
}

// getToken 把 bearer 凭据解析成 token 记录，不检查过期（刷新接口用）
func (a *App) getToken(c echo.Context) (*models.UserToken, error, int) {
	rctx := c.Request().Context()

	credential, err := a.bearerCredential(c)
	if err != nil {
		return nil, err, http.StatusUnauthorized
	}

	// 快路径：不是合法 UUID 的凭据直接拒绝，不查存储
	uuidToken, err := uuid.Parse(credential)
	if err != nil {
		return nil, fmt.Errorf("invalid uuid token: %s", credential), http.StatusUnauthorized
	}

	var token models.UserToken

	// 查询缓存
	cacheKey := fmt.Sprintf(constants.CacheKeyTokenInfo, uuidToken)
	if cacheBytes, err := a.rdb.Get(rctx, cacheKey).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			a.l.Error("failed to query cache for token info", zap.String("token", uuidToken.String()), zap.Error(err))
		}
	} else if err = json.Unmarshal(cacheBytes, &token); err != nil {
		a.l.Error("failed to unmarshal token info", zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
		// 可能是无效的缓存，清理掉
		a.rdb.Del(rctx, cacheKey)
	} else {
		// 成功拉取到并格式化
		return &token, nil, http.StatusOK
	}

	// 查询数据库
	if err = a.db.WithContext(rctx).First(&token, "token = ?", uuidToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no such token"), http.StatusUnauthorized
		} else {
			return nil, fmt.Errorf("error query token: %w", err), http.StatusInternalServerError
		}
	}

	// 格式化并加入缓存，方便下一次查询
	if cacheBytes, err := json.Marshal(&token); err != nil {
		a.l.Error("failed to marshal token info", zap.Error(err))
	} else {
		a.rdb.Set(rctx, cacheKey, cacheBytes, constants.CacheExpireTokenInfo)
	}

	return &token, nil, http.StatusOK
}

// getLiveToken 在 getToken 的基础上要求 token 未过期（所有携带身份的操作用）
func (a *App) getLiveToken(c echo.Context) (*models.UserToken, error, int) {
	token, err, statusCode := a.getToken(c)
	if err != nil {
		return nil, err, statusCode
	}

	// 过期是调用时计算的判断，不从缓存里读取结论
	if token.IsExpired() {
		return nil, fmt.Errorf("token expired"), http.StatusUnauthorized
	}

	return token, nil, http.StatusOK
}

// getCurrentUser 把未过期的 token 解析成持有它的用户
func (a *App) getCurrentUser(c echo.Context) (*models.User, error, int) {
	token, err, statusCode := a.getLiveToken(c)
	if err != nil {
		return nil, err, statusCode
	}

	rctx := c.Request().Context()

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", token.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 外键约束下不应该出现，但出现时按无效凭据处理而不是假设不可能
			return nil, fmt.Errorf("token owner missing"), http.StatusUnauthorized
		} else {
			return nil, fmt.Errorf("error query user: %w", err), http.StatusInternalServerError
		}
	}

	return &user, nil, http.StatusOK
}

// dropTokenCache 删除缓存里的 token 信息，刷新或吊销凭据之后调用，
// 保证被吊销的会话不会在缓存里多活一段时间
func (a *App) dropTokenCache(ctx context.Context, tokens ...uuid.UUID) {
	if len(tokens) == 0 {
		return
	}

	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		keys = append(keys, fmt.Sprintf(constants.CacheKeyTokenInfo, t))
	}

	if err := a.rdb.Del(ctx, keys...).Err(); err != nil {
		a.l.Error("failed to drop token cache", zap.Error(err))
	}
}
