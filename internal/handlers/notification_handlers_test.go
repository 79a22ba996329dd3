package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

func TestGetNotifications_ScopedToActor(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &NotificationHandler{DB: db}

	userA := createUser(t, db, "A", "")
	userB := createUser(t, db, "B", "")

	for i, uid := range []uint{userA.ID, userA.ID, userB.ID} {
		n := models.Notification{
			UserID: uid,
			Type:   models.NotificationGeneral,
			Title:  "n" + strconv.Itoa(i),
		}
		require.NoError(t, db.Create(&n).Error)
	}

	rec, c := jsonCtx(t, e, http.MethodGet, "/api/v1/notifications", nil, userA.ID)
	require.NoError(t, h.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	// newest first
	assert.Equal(t, "n1", items[0].Title)
	assert.Equal(t, "n0", items[1].Title)
	for _, n := range items {
		assert.Equal(t, userA.ID, n.UserID)
	}
}

func TestMarkRead(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &NotificationHandler{DB: db}

	userA := createUser(t, db, "A", "")
	n := models.Notification{UserID: userA.ID, Type: models.NotificationGeneral, Title: "n"}
	require.NoError(t, db.Create(&n).Error)

	rec, c := jsonCtx(t, e, http.MethodPatch, "/api/v1/notifications/:id/read", nil, userA.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(n.ID)))
	require.NoError(t, h.MarkRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.True(t, stored.Read)
}

func TestMarkRead_CrossTenantIsNotFound(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &NotificationHandler{DB: db}

	userA := createUser(t, db, "A", "")
	userB := createUser(t, db, "B", "")
	n := models.Notification{UserID: userA.ID, Type: models.NotificationGeneral, Title: "n"}
	require.NoError(t, db.Create(&n).Error)

	_, c := jsonCtx(t, e, http.MethodPatch, "/api/v1/notifications/:id/read", nil, userB.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(n.ID)))
	requireHTTPError(t, h.MarkRead(c), http.StatusNotFound)

	var stored models.Notification
	require.NoError(t, db.First(&stored, n.ID).Error)
	assert.False(t, stored.Read)
}
