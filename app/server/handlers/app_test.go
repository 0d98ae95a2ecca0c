package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"student-score-network/app/server/constants"
	"student-score-network/app/server/models"
)

func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewApp(zap.NewNop(), gdb, rdb), mock, mr
}

func newEchoContext(method string, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testToken(userID uint, expiresIn time.Duration) *models.UserToken {
	token := &models.UserToken{
		Token:     uuid.New(),
		ExpiredAt: time.Now().Add(expiresIn),
		UserID:    userID,
	}
	token.ID = 1
	return token
}

// cacheToken 把 token 信息放进缓存，模拟一个已经发放过的会话
func cacheToken(t *testing.T, mr *miniredis.Miniredis, token *models.UserToken) {
	t.Helper()

	data, err := json.Marshal(token)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := mr.Set(fmt.Sprintf(constants.CacheKeyTokenInfo, token.Token), string(data)); err != nil {
		t.Fatalf("seed token cache: %v", err)
	}
}

func authorize(c echo.Context, token *models.UserToken) {
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+token.Token.String())
}
