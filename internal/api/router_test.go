package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mmo1994/meetsync/internal/app"
	"github.com/mmo1994/meetsync/internal/database/testutil"
	"github.com/mmo1994/meetsync/internal/middleware"
	"github.com/mmo1994/meetsync/internal/models"
	"github.com/mmo1994/meetsync/internal/notifications"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	cfg := &app.Config{}
	cfg.Monitoring.Prometheus.Enabled = true

	router, err := NewRouter(db, cfg, notifications.NewHub())
	require.NoError(t, err)
	return router, db
}

func doRequest(router *gin.Engine, method, path, userID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestAPIRequiresIdentity(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/notifications", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListNotifications(t *testing.T) {
	router, db := newTestRouter(t)

	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Notification{
		UserID: user.ID,
		Type:   models.NotificationTypeMeetingReminder,
		Title:  "Meeting Reminder",
	}).Error)

	w := doRequest(router, http.MethodGet, "/api/notifications", user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Meeting Reminder")
}

func TestPreferencesRoundTrip(t *testing.T) {
	router, db := newTestRouter(t)
	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := doRequest(router, http.MethodGet, "/api/preferences", user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"email_enabled":true`)

	w = doRequest(router, http.MethodPut, "/api/preferences", user.ID,
		`{"email_enabled":true,"push_enabled":false,"in_app_enabled":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/preferences", user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"push_enabled":false`)
}

func TestPushSubscriptionRegisterAndUnregister(t *testing.T) {
	router, db := newTestRouter(t)
	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := doRequest(router, http.MethodPost, "/api/push-subscriptions", user.ID,
		`{"endpoint":"https://push.example.com/sub/1","p256dh_key":"pk","auth_key":"ak","device_name":"laptop"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var sub models.PushSubscription
	require.NoError(t, db.First(&sub, "user_id = ?", user.ID).Error)

	w = doRequest(router, http.MethodDelete, "/api/push-subscriptions/"+sub.ID, user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.PushSubscription{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPushSubscriptionValidation(t *testing.T) {
	router, db := newTestRouter(t)
	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)

	w := doRequest(router, http.MethodPost, "/api/push-subscriptions", user.ID, `{"endpoint":"not a url"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
