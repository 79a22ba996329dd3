package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

// NotificationHandler exposes notifications read-only except for the read
// flag. Clients never create or delete notification records.
type NotificationHandler struct {
	DB *gorm.DB
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.get_notifications")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items := []models.Notification{}
	err = h.DB.Where("user_id = ?", actorID).Order("id DESC").Find(&items).Error
	if err != nil {
		l.Error("get_notifications_failed", "status", 500, "reason", "cannot list notifications", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list notifications")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	res := h.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, actorID).
		Update("read", true)
	if res.Error != nil {
		l.Error("mark_read_failed", "status", 500, "reason", "cannot update notification", "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update notification")
	}
	if res.RowsAffected == 0 {
		l.Warn("mark_read_failed", "status", 404, "reason", "notification does not exist", "notificationID", id)
		return echo.NewHTTPError(http.StatusNotFound, "notification does not exist")
	}

	var n models.Notification
	if err := h.DB.First(&n, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load notification")
	}

	l.Info("mark_read_success", "notificationID", n.ID)
	return c.JSON(http.StatusOK, n)
}
