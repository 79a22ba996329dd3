package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/media"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

type ProductImageHandler struct {
	DB    *gorm.DB
	Media media.Store
}

func (h *ProductImageHandler) ListImages(c echo.Context) error {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var images []models.ProductImage
	if err := h.DB.Where("product_id = ?", productID).Order("id ASC").Find(&images).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list images")
	}
	return c.JSON(http.StatusOK, images)
}

func (h *ProductImageHandler) ownedProduct(c echo.Context, actorID uint) (*models.Product, error) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	if err := h.DB.Where("id = ? AND user_id = ?", productID, actorID).First(&prod).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "product does not exist")
	}
	return &prod, nil
}

// demoteMain clears is_main on every other image of the product so at
// most one main image survives the write.
func demoteMain(tx *gorm.DB, productID, keepID uint) error {
	return tx.Model(&models.ProductImage{}).
		Where("product_id = ? AND id <> ?", productID, keepID).
		Update("is_main", false).Error
}

func (h *ProductImageHandler) CreateImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_image.create")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prod, err := h.ownedProduct(c, actorID)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image_file")
	if err != nil {
		l.Warn("create_image_failed", "status", 400, "reason", "image_file is required")
		return echo.NewHTTPError(http.StatusBadRequest, "image_file is required")
	}
	isMain, _ := strconv.ParseBool(c.FormValue("is_main"))

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read image file")
	}
	defer src.Close()

	url, err := h.Media.Upload(ctx, fmt.Sprintf("products/%d/", prod.ID), fh.Filename, src)
	if err != nil {
		l.Error("create_image_failed", "status", 502, "reason", "upload failed", "error", err)
		return httpError(err)
	}

	img := models.ProductImage{
		ProductID: prod.ID,
		URL:       url,
		IsMain:    isMain,
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&img).Error; err != nil {
			return err
		}
		if img.IsMain {
			return demoteMain(tx, prod.ID, img.ID)
		}
		return nil
	})
	if err != nil {
		l.Error("create_image_failed", "status", 500, "reason", "cannot save image", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save image")
	}

	l.Info("create_image_success", "productID", prod.ID, "imageID", img.ID)
	return c.JSON(http.StatusCreated, img)
}

func (h *ProductImageHandler) PatchImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_image.patch")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prod, err := h.ownedProduct(c, actorID)
	if err != nil {
		return err
	}

	imageID, err := strconv.Atoi(c.Param("imageID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "imageID is not integer")
	}

	var img models.ProductImage
	if err := h.DB.Where("id = ? AND product_id = ?", imageID, prod.ID).First(&img).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "image does not exist")
	}

	if fh, err := c.FormFile("image_file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read image file")
		}
		defer src.Close()

		url, err := h.Media.Upload(ctx, fmt.Sprintf("products/%d/", prod.ID), fh.Filename, src)
		if err != nil {
			l.Error("patch_image_failed", "status", 502, "reason", "upload failed", "error", err)
			return httpError(err)
		}
		img.URL = url
	}

	if v := c.FormValue("is_main"); v != "" {
		img.IsMain, _ = strconv.ParseBool(v)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&img).Error; err != nil {
			return err
		}
		if img.IsMain {
			return demoteMain(tx, prod.ID, img.ID)
		}
		return nil
	})
	if err != nil {
		l.Error("patch_image_failed", "status", 500, "reason", "cannot save image", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save image")
	}

	l.Info("patch_image_success", "productID", prod.ID, "imageID", img.ID)
	return c.JSON(http.StatusOK, img)
}

func (h *ProductImageHandler) DeleteImage(c echo.Context) error {
	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prod, err := h.ownedProduct(c, actorID)
	if err != nil {
		return err
	}

	imageID, err := strconv.Atoi(c.Param("imageID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "imageID is not integer")
	}

	res := h.DB.Where("id = ? AND product_id = ?", imageID, prod.ID).Delete(&models.ProductImage{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete image")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "image does not exist")
	}

	return c.NoContent(http.StatusNoContent)
}
