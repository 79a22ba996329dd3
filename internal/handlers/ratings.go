package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/notify"
)

type RatingHandler struct {
	DB       *gorm.DB
	Notifier *notify.Dispatcher
}

// reputationLevel derives the level from how many ratings a user has
// received and their mean score.
func reputationLevel(count int64, avg float64) uint {
	switch {
	case count >= 30 && avg >= 4.5:
		return 5
	case count >= 15 && avg >= 4.0:
		return 4
	case count >= 8 && avg >= 3.5:
		return 3
	case count >= 3 && avg >= 3.0:
		return 2
	default:
		return 1
	}
}

func (h *RatingHandler) CreateRating(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rating.create_rating")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	toUserID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}
	if uint(toUserID) == actorID {
		l.Warn("create_rating_failed", "status", 400, "reason", "self rating")
		return echo.NewHTTPError(http.StatusBadRequest, "cannot rate yourself")
	}

	var req struct {
		Rating  uint   `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		l.Warn("create_rating_failed", "status", 400, "reason", "rating out of range")
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	var rated models.User
	if err := h.DB.First(&rated, toUserID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user does not exist")
	}
	var rater models.User
	if err := h.DB.First(&rater, actorID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}

	rating := models.UserRating{
		FromUserID: actorID,
		ToUserID:   rated.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	oldLevel := rated.ReputationLevel
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}

		var stats struct {
			Count int64
			Avg   float64
		}
		err := tx.Model(&models.UserRating{}).
			Select("COUNT(*) AS count, AVG(rating) AS avg").
			Where("to_user_id = ?", rated.ID).
			Scan(&stats).Error
		if err != nil {
			return err
		}

		rated.ReputationScore = stats.Avg
		rated.ReputationLevel = reputationLevel(stats.Count, stats.Avg)
		if err := tx.Save(&rated).Error; err != nil {
			return err
		}

		n := models.Notification{
			UserID:    rated.ID,
			Type:      models.NotificationNewRating,
			Title:     "Você recebeu uma nova avaliação",
			Message:   fmt.Sprintf("%s avaliou você com nota %d", rater.Username, req.Rating),
			LinkTo:    "/profile",
			RelatedID: rating.ID,
		}
		if err := h.Notifier.Dispatch(ctx, tx, &n); err != nil {
			return err
		}

		if rated.ReputationLevel > oldLevel {
			levelUp := models.Notification{
				UserID:    rated.ID,
				Type:      models.NotificationLevelUp,
				Title:     "Você subiu de nível",
				Message:   fmt.Sprintf("Sua reputação chegou ao nível %d", rated.ReputationLevel),
				LinkTo:    "/profile",
				RelatedID: rated.ID,
			}
			if err := h.Notifier.Dispatch(ctx, tx, &levelUp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Error("create_rating_failed", "status", 500, "reason", "cannot save rating", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save rating")
	}

	l.Info("create_rating_success", "ratingID", rating.ID, "toUserID", rated.ID)
	return c.JSON(http.StatusCreated, rating)
}

func (h *RatingHandler) GetRatings(c echo.Context) error {
	toUserID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	items := []models.UserRating{}
	if err := h.DB.Where("to_user_id = ?", toUserID).Order("id DESC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list ratings")
	}
	return c.JSON(http.StatusOK, items)
}
