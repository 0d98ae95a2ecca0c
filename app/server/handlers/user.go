package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-score-network/app/server/constants"
	"student-score-network/app/server/models"
	"student-score-network/app/server/security"
	"student-score-network/app/server/types"
)

func userResponse(user *models.User) *types.UserResponse {
	return &types.UserResponse{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		LastName:  user.LastName,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func tokenResponse(token *models.UserToken) *types.TokenResponse {
	return &types.TokenResponse{
		AccessToken: token.Token.String(),
		TokenType:   "bearer",
		ExpiresAt:   token.ExpiredAt,
	}
}

func (a *App) UserRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体：形状不对和字段缺失同属一类校验错误
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusUnprocessableEntity)
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return a.er(c, http.StatusUnprocessableEntity)
	}

	// 检查用户名与邮箱占用
	var existing models.User
	if err := a.db.WithContext(rctx).First(&existing, "username = ?", req.Username).Error; err == nil {
		return a.erMsg(c, http.StatusBadRequest, "Username already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to check username", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.db.WithContext(rctx).First(&existing, "email = ?", req.Email).Error; err == nil {
		return a.erMsg(c, http.StatusBadRequest, "Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.l.Error("failed to check email", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 处理密码
	digest, salt, err := security.GeneratePassword(req.Password)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 创建用户
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		LastName: req.LastName,
		Roles:    pq.StringArray{constants.RoleUser},
		Password: digest,
		Salt:     salt,
	}
	if err := a.db.WithContext(rctx).Create(&user).Error; err != nil {
		a.l.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, userResponse(&user))
}

func (a *App) UserLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 登录沿用 form 编码的凭据
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return a.er(c, http.StatusBadRequest)
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return a.erMsg(c, http.StatusUnauthorized, "Incorrect username or password")
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 校验密码
	if !security.VerifyPassword(password, user.Password, user.Salt) {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return a.erMsg(c, http.StatusUnauthorized, "Incorrect username or password")
	}

	// 发放新 token ：同一用户可以持有多个并发会话，互不影响
	token := models.UserToken{
		Token:     uuid.New(),
		ExpiredAt: time.Now().Add(constants.AuthTokenDuration),
		UserID:    user.ID,
	}
	if err := a.db.WithContext(rctx).Create(&token).Error; err != nil {
		a.l.Error("failed to create token", zap.Uint("userID", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, tokenResponse(&token))
}

func (a *App) UserRefreshToken(c echo.Context) error {
	// 刷新允许使用已过期的 token （宽限期策略），所以这里走不检查过期的那一档
	token, err, statusCode := a.getToken(c)
	if err != nil {
		a.l.Error("failed to get token", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	rctx := c.Request().Context()

	// 原地替换凭据与过期时间，行不变，会话得以延长
	oldToken := token.Token
	newToken := uuid.New()
	newExpiry := time.Now().Add(constants.AuthTokenDuration)
	if err := a.db.WithContext(rctx).Model(token).Updates(map[string]interface{}{
		"token":      newToken,
		"expired_at": newExpiry,
	}).Error; err != nil {
		a.l.Error("failed to refresh token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 老凭据的缓存立刻失效
	a.dropTokenCache(rctx, oldToken)

	token.Token = newToken
	token.ExpiredAt = newExpiry
	return c.JSON(http.StatusOK, tokenResponse(token))
}

func (a *App) UserChangePassword(c echo.Context) error {
	// 改密码必须持有未过期的 token
	token, err, statusCode := a.getLiveToken(c)
	if err != nil {
		a.l.Error("failed to get token", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	rctx := c.Request().Context()

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "id = ?", token.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.erAuth(c)
		} else {
			a.l.Error("failed to get user", zap.Uint("id", token.UserID), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// 绑定请求体：形状不对和字段缺失同属一类校验错误
	var req types.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind request", zap.Error(err))
		return a.er(c, http.StatusUnprocessableEntity)
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return a.er(c, http.StatusUnprocessableEntity)
	}

	if !security.VerifyPassword(req.OldPassword, user.Password, user.Salt) {
		return a.erMsg(c, http.StatusBadRequest, "Incorrect password")
	}

	digest, salt, err := security.GeneratePassword(req.NewPassword)
	if err != nil {
		a.l.Error("failed to hash password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 先收集现有凭据，吊销之后还要把它们的缓存一并清掉
	var issued []uuid.UUID
	if err := a.db.WithContext(rctx).Model(&models.UserToken{}).Where("user_id = ?", user.ID).Pluck("token", &issued).Error; err != nil {
		a.l.Error("failed to collect tokens", zap.Uint("userID", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 密码更新与全量吊销在同一个事务里完成，不留下任何幸存的会话
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password": digest,
			"salt":     salt,
		}).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", user.ID).Delete(&models.UserToken{}).Error
	}); err != nil {
		a.l.Error("failed to update password", zap.Uint("userID", user.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 在提交之前开始的并发读取可能在这次删除之后把旧 token 写回缓存，
	// 这种残留最多存活 CacheExpireTokenInfo ，之后一定回源到已清空的 token 表
	a.dropTokenCache(rctx, issued...)

	return c.JSON(http.StatusOK, &types.DetailResponse{
		Detail: "Password updated successfully",
	})
}

func (a *App) UserInfoGetSelf(c echo.Context) error {
	// 这里是对用户本身的操作，身份完全来自凭据
	user, err, statusCode := a.getCurrentUser(c)
	if err != nil {
		a.l.Error("failed to get user", zap.Error(err))
		return a.erCredential(c, statusCode)
	}

	return c.JSON(http.StatusOK, userResponse(user))
}
