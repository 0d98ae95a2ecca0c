package routes

import (
	"github.com/labstack/echo/v4"

	"student-score-network/app/server/handlers"
)

// Register 绑定全部路由
func Register(e *echo.Echo, app *handlers.App) {
	e.GET("/health", app.HealthCheck)
	e.GET("/health/db", app.HealthCheckDB)

	user := e.Group("/user")
	user.POST("/register", app.UserRegister)
	user.POST("/login", app.UserLogin)
	user.POST("/refresh-token", app.UserRefreshToken)
	user.POST("/change-password", app.UserChangePassword)
	user.GET("/me", app.UserInfoGetSelf)

	score := e.Group("/score")
	score.GET("", app.ScoreList)
	score.POST("", app.ScoreCreate)
	score.DELETE("/:id", app.ScoreDelete)
	score.POST("/import-csv", app.ScoreImportCSV)
}
