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
	"github.com/lucasbessegato/TrokaiBackend/internal/notify"
)

func TestCreateRating(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &RatingHandler{DB: db, Notifier: &notify.Dispatcher{}}

	rater := createUser(t, db, "rater", "")
	rated := createUser(t, db, "rated", "")

	rec, c := jsonCtx(t, e, http.MethodPost, "/api/v1/users/:id/ratings", map[string]any{
		"rating":  4,
		"comment": "ótima troca",
	}, rater.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(rated.ID)))
	require.NoError(t, h.CreateRating(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var rating models.UserRating
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rating))
	assert.EqualValues(t, 4, rating.Rating)

	var stored models.User
	require.NoError(t, db.First(&stored, rated.ID).Error)
	assert.InDelta(t, 4.0, stored.ReputationScore, 0.001)
	assert.EqualValues(t, 1, stored.ReputationLevel)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", rated.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationNewRating, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "rater")
}

func TestCreateRating_LevelUp(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &RatingHandler{DB: db, Notifier: &notify.Dispatcher{}}

	rated := createUser(t, db, "rated", "")

	// two prior 5-star ratings; the third pushes the user to level 2
	for i := 0; i < 2; i++ {
		from := createUser(t, db, "rater"+strconv.Itoa(i), "")
		require.NoError(t, db.Create(&models.UserRating{
			FromUserID: from.ID,
			ToUserID:   rated.ID,
			Rating:     5,
		}).Error)
	}

	rater := createUser(t, db, "rater_final", "")
	rec, c := jsonCtx(t, e, http.MethodPost, "/api/v1/users/:id/ratings", map[string]any{
		"rating": 5,
	}, rater.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(rated.ID)))
	require.NoError(t, h.CreateRating(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, rated.ID).Error)
	assert.EqualValues(t, 2, stored.ReputationLevel)

	var levelUps []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", rated.ID, models.NotificationLevelUp).Find(&levelUps).Error)
	require.Len(t, levelUps, 1)
}

func TestCreateRating_Validation(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &RatingHandler{DB: db, Notifier: &notify.Dispatcher{}}

	rater := createUser(t, db, "rater", "")
	rated := createUser(t, db, "rated", "")

	// out-of-range rating
	_, c := jsonCtx(t, e, http.MethodPost, "/api/v1/users/:id/ratings", map[string]any{
		"rating": 6,
	}, rater.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(rated.ID)))
	requireHTTPError(t, h.CreateRating(c), http.StatusBadRequest)

	// self rating
	_, c = jsonCtx(t, e, http.MethodPost, "/api/v1/users/:id/ratings", map[string]any{
		"rating": 5,
	}, rater.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(rater.ID)))
	requireHTTPError(t, h.CreateRating(c), http.StatusBadRequest)
}
