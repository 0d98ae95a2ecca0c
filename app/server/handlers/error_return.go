package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"student-score-network/app/server/types"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: http.StatusText(statusCode),
	})
}

func (a *App) erMsg(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: message,
	})
}

// 凭据被拒绝时统一返回同一个 401 ，调用方无法从响应里区分
// 格式错误、不存在与已过期这几种情况
func (a *App) erAuth(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, &types.ErrorMessage{
		Message: "Could not validate credentials",
	})
}

// 认证链返回的状态码中，401 要走统一的凭据错误，其余照常返回
func (a *App) erCredential(c echo.Context, statusCode int) error {
	if statusCode == http.StatusUnauthorized {
		return a.erAuth(c)
	}
	return a.er(c, statusCode)
}
