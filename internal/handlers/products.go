package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/events"
	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
	"github.com/lucasbessegato/TrokaiBackend/internal/service/search"
	"github.com/lucasbessegato/TrokaiBackend/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

type productRequest struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	ImageURL            string          `json:"image_url"`
	CategoryID          uint            `json:"category_id"`
	AcceptableExchanges json.RawMessage `json:"acceptable_exchanges"`
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.ESIndex, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var product models.Product
	err = h.DB.Preload("Category").Preload("User").Preload("Images").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product does not exist")
			return echo.NewHTTPError(http.StatusNotFound, "product does not exist")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if v := c.QueryParam("category"); v != "" {
		q = q.Where("category_id = ?", util.ParseIntDefault(v, 0))
	}
	if v := c.QueryParam("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.QueryParam("user"); v != "" {
		q = q.Where("user_id = ?", util.ParseIntDefault(v, 0))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		l.Error("get_products_failed", "status", 500, "reason", "cannot count products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}

	var items []models.Product
	err := q.Preload("Category").Preload("User").Preload("Images").
		Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		l.Error("get_products_failed", "status", 500, "reason", "cannot get products with offset", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get products with offset")
	}

	l.Info("get_products_success")
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" || req.CategoryID == 0 {
		l.Warn("create_product_failed", "status", 400, "reason", "missing title or category")
		return echo.NewHTTPError(http.StatusBadRequest, "title and category_id are required")
	}

	var category models.Category
	if err := h.DB.First(&category, req.CategoryID).Error; err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "category does not exist", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "category does not exist")
	}

	prod := models.Product{
		Title:               req.Title,
		Description:         req.Description,
		ImageURL:            req.ImageURL,
		CategoryID:          req.CategoryID,
		UserID:              actorID,
		AcceptableExchanges: datatypes.JSON(req.AcceptableExchanges),
		Status:              models.ProductAvailable,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		l.Error("create_product_failed", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	h.index(c, &prod)
	publish(c, h.Producer, events.TopicProductEvents, map[string]interface{}{
		"type":      "product_created",
		"productID": prod.ID,
		"userID":    actorID,
		"title":     prod.Title,
	})

	l.Info("create_product_success", "productID", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

// ownedProduct resolves the product only when the actor owns it. Other
// users' products surface as not-found.
func (h *ProductHandler) ownedProduct(c echo.Context, actorID uint) (*models.Product, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	err = h.DB.Where("id = ? AND user_id = ?", id, actorID).First(&prod).Error
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "product does not exist")
	}
	return &prod, nil
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prod, err := h.ownedProduct(c, actorID)
	if err != nil {
		return err
	}

	var req struct {
		Title               *string         `json:"title"`
		Description         *string         `json:"description"`
		ImageURL            *string         `json:"image_url"`
		CategoryID          *uint           `json:"category_id"`
		AcceptableExchanges json.RawMessage `json:"acceptable_exchanges"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Title != nil {
		prod.Title = *req.Title
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := h.DB.First(&category, *req.CategoryID).Error; err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "category does not exist")
		}
		prod.CategoryID = *req.CategoryID
	}
	if len(req.AcceptableExchanges) > 0 {
		prod.AcceptableExchanges = datatypes.JSON(req.AcceptableExchanges)
	}

	if err := h.DB.Save(prod).Error; err != nil {
		l.Error("patch_product_failed", "status", 500, "reason", "cannot save product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
	}

	h.index(c, prod)
	publish(c, h.Producer, events.TopicProductEvents, map[string]interface{}{
		"type":      "product_updated",
		"productID": prod.ID,
		"userID":    actorID,
		"title":     prod.Title,
	})

	l.Info("patch_product_success", "productID", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	actorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	prod, err := h.ownedProduct(c, actorID)
	if err != nil {
		return err
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", prod.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, prod.ID).Error
	})
	if err != nil {
		l.Error("delete_product_failed", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	if err := search.DeleteProduct(ctx, h.ES, h.ESIndex, prod.ID); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
	publish(c, h.Producer, events.TopicProductEvents, map[string]interface{}{
		"type":      "product_deleted",
		"productID": prod.ID,
		"userID":    actorID,
	})

	l.Info("delete_product_success", "productID", prod.ID)
	return c.NoContent(http.StatusNoContent)
}
