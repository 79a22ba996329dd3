package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/events"
	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/media"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

type UserHandler struct {
	DB       *gorm.DB
	Media    media.Store
	Producer *events.Producer
}

func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		l.Warn("get_user_failed", "status", 404, "reason", "user does not exist", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "user does not exist")
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser is self-only and accepts multipart form data so the avatar
// file can ride along with profile fields. The avatar is pushed to the
// media store first; an upload failure aborts the whole write.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}
	if uint(id) != actorID {
		l.Warn("update_user_failed", "status", 404, "reason", "cross-tenant profile edit", "userID", actorID)
		return echo.NewHTTPError(http.StatusNotFound, "user does not exist")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user does not exist")
	}

	if v := c.FormValue("fullName"); v != "" {
		user.FullName = v
	}
	if v := c.FormValue("email"); v != "" {
		user.Email = v
	}
	if v := c.FormValue("phone"); v != "" {
		user.Phone = v
	}
	if v := c.FormValue("city"); v != "" {
		user.City = v
	}
	if v := c.FormValue("state"); v != "" {
		user.State = v
	}

	if fh, err := c.FormFile("avatar_file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read avatar file")
		}
		defer src.Close()

		url, err := h.Media.Upload(ctx, "avatars/", fh.Filename, src)
		if err != nil {
			l.Error("update_user_failed", "status", 502, "reason", "avatar upload failed", "error", err)
			return httpError(err)
		}
		user.Avatar = url
	}

	if err := h.DB.Save(&user).Error; err != nil {
		l.Error("update_user_failed", "status", 500, "reason", "cannot save user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save user")
	}

	publish(c, h.Producer, events.TopicUserEvents, map[string]interface{}{
		"type":   "user_updated",
		"userID": user.ID,
	})

	l.Info("update_user_success", "userID", user.ID)
	return c.JSON(http.StatusOK, user)
}
