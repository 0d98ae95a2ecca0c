package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"student-score-network/app/server/constants"
)

func TestGetTokenRejectsMalformedCredential(t *testing.T) {
	app, mock, _ := newTestApp(t)

	for _, header := range []string{
		"",
		"Bearer",
		"Basic YWJjOmRlZg==",
		"Bearer not-a-uuid",
		"Bearer too many parts",
	} {
		c, _ := newEchoContext(http.MethodPost, "/user/refresh-token", nil)
		if header != "" {
			c.Request().Header.Set(echo.HeaderAuthorization, header)
		}

		_, err, statusCode := app.getToken(c)
		if err == nil {
			t.Errorf("header %q was accepted", header)
		}
		if statusCode != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, statusCode, http.StatusUnauthorized)
		}
	}

	// 形状校验是快路径，不应触达存储
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetTokenCacheHit(t *testing.T) {
	app, mock, mr := newTestApp(t)

	token := testToken(7, time.Hour)
	cacheToken(t, mr, token)

	c, _ := newEchoContext(http.MethodPost, "/user/refresh-token", nil)
	authorize(c, token)

	got, err, _ := app.getToken(c)
	if err != nil {
		t.Fatalf("getToken: %v", err)
	}
	if got.Token != token.Token || got.UserID != 7 {
		t.Errorf("got token %s user %d, want %s user 7", got.Token, got.UserID, token.Token)
	}

	// 缓存命中时不应该查库
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetTokenDBFallback(t *testing.T) {
	app, mock, mr := newTestApp(t)

	tokenID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_tokens" WHERE token = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "expired_at", "user_id"}).
			AddRow(1, tokenID.String(), time.Now().Add(time.Hour), 7))

	c, _ := newEchoContext(http.MethodPost, "/user/refresh-token", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+tokenID.String())

	got, err, _ := app.getToken(c)
	if err != nil {
		t.Fatalf("getToken: %v", err)
	}
	if got.UserID != 7 {
		t.Errorf("got user %d, want 7", got.UserID)
	}

	// 查询结果要写回缓存
	if !mr.Exists(fmt.Sprintf(constants.CacheKeyTokenInfo, tokenID)) {
		t.Error("token info was not cached after the DB lookup")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetTokenUnknown(t *testing.T) {
	app, mock, _ := newTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_tokens" WHERE token = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, _ := newEchoContext(http.MethodPost, "/user/refresh-token", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+uuid.NewString())

	_, err, statusCode := app.getToken(c)
	if err == nil {
		t.Error("unknown token was accepted")
	}
	if statusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", statusCode, http.StatusUnauthorized)
	}
}

func TestGetLiveTokenExpired(t *testing.T) {
	app, _, mr := newTestApp(t)

	token := testToken(7, -time.Hour)
	cacheToken(t, mr, token)

	// 刷新档仍然接受过期 token
	c, _ := newEchoContext(http.MethodPost, "/user/refresh-token", nil)
	authorize(c, token)
	if _, err, _ := app.getToken(c); err != nil {
		t.Errorf("getToken rejected an expired token: %v", err)
	}

	// 带身份的档不接受
	c, _ = newEchoContext(http.MethodPost, "/user/change-password", nil)
	authorize(c, token)
	_, err, statusCode := app.getLiveToken(c)
	if err == nil {
		t.Error("getLiveToken accepted an expired token")
	}
	if statusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", statusCode, http.StatusUnauthorized)
	}
}

func TestGetCurrentUser(t *testing.T) {
	app, mock, mr := newTestApp(t)

	token := testToken(7, time.Hour)
	cacheToken(t, mr, token)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "roles"}).
			AddRow(7, "alice", "{user}"))

	c, _ := newEchoContext(http.MethodGet, "/user/me", nil)
	authorize(c, token)

	user, err, _ := app.getCurrentUser(c)
	if err != nil {
		t.Fatalf("getCurrentUser: %v", err)
	}
	if user.ID != 7 || user.Username != "alice" {
		t.Errorf("got user %d %q, want 7 %q", user.ID, user.Username, "alice")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetCurrentUserMissingOwner(t *testing.T) {
	app, mock, mr := newTestApp(t)

	token := testToken(7, time.Hour)
	cacheToken(t, mr, token)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, _ := newEchoContext(http.MethodGet, "/user/me", nil)
	authorize(c, token)

	// 持有者缺失按无效凭据处理，与 token 不存在同一个错误类别
	_, err, statusCode := app.getCurrentUser(c)
	if err == nil {
		t.Error("token without an owner was accepted")
	}
	if statusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", statusCode, http.StatusUnauthorized)
	}
}
