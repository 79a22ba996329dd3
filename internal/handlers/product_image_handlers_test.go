package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasbessegato/TrokaiBackend/internal/apperr"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

func TestCreateImage(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	media := &fakeMediaStore{}
	h := &ProductImageHandler{DB: db, Media: media}

	owner := createUser(t, db, "owner", "")
	prod := createProduct(t, db, owner, "Bicicleta")

	rec, c := multipartCtx(t, e, http.MethodPost, "/api/v1/products/:id/images",
		map[string]string{"is_main": "true"},
		"image_file", "bike.jpg", []byte("jpegdata"), owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(prod.ID)))
	require.NoError(t, h.CreateImage(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var img models.ProductImage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &img))
	assert.True(t, img.IsMain)
	assert.Equal(t, fmt.Sprintf("https://cdn.test/products/%d/bike.jpg", prod.ID), img.URL)
}

func TestCreateImage_MainDemotesPrevious(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductImageHandler{DB: db, Media: &fakeMediaStore{}}

	owner := createUser(t, db, "owner", "")
	prod := createProduct(t, db, owner, "Bicicleta")

	first := models.ProductImage{ProductID: prod.ID, URL: "https://cdn.test/a.jpg", IsMain: true}
	require.NoError(t, db.Create(&first).Error)

	_, c := multipartCtx(t, e, http.MethodPost, "/api/v1/products/:id/images",
		map[string]string{"is_main": "true"},
		"image_file", "b.jpg", []byte("jpegdata"), owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(prod.ID)))
	require.NoError(t, h.CreateImage(c))

	var mains int64
	require.NoError(t, db.Model(&models.ProductImage{}).
		Where("product_id = ? AND is_main = ?", prod.ID, true).
		Count(&mains).Error)
	assert.EqualValues(t, 1, mains)

	var stored models.ProductImage
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.False(t, stored.IsMain)
}

func TestCreateImage_UploadFailureAbortsWrite(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductImageHandler{DB: db, Media: &fakeMediaStore{
		fail: fmt.Errorf("%w: cloudinary upload status 502", apperr.ErrUpstream),
	}}

	owner := createUser(t, db, "owner", "")
	prod := createProduct(t, db, owner, "Bicicleta")

	_, c := multipartCtx(t, e, http.MethodPost, "/api/v1/products/:id/images",
		nil, "image_file", "b.jpg", []byte("jpegdata"), owner.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(prod.ID)))
	requireHTTPError(t, h.CreateImage(c), http.StatusBadGateway)

	var count int64
	require.NoError(t, db.Model(&models.ProductImage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateImage_NonOwnerIsNotFound(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductImageHandler{DB: db, Media: &fakeMediaStore{}}

	owner := createUser(t, db, "owner", "")
	other := createUser(t, db, "other", "")
	prod := createProduct(t, db, owner, "Bicicleta")

	_, c := multipartCtx(t, e, http.MethodPost, "/api/v1/products/:id/images",
		nil, "image_file", "b.jpg", []byte("jpegdata"), other.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(prod.ID)))
	requireHTTPError(t, h.CreateImage(c), http.StatusNotFound)
}

func TestPatchImage_SetMain(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductImageHandler{DB: db, Media: &fakeMediaStore{}}

	owner := createUser(t, db, "owner", "")
	prod := createProduct(t, db, owner, "Bicicleta")

	first := models.ProductImage{ProductID: prod.ID, URL: "https://cdn.test/a.jpg", IsMain: true}
	second := models.ProductImage{ProductID: prod.ID, URL: "https://cdn.test/b.jpg"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	rec, c := multipartCtx(t, e, http.MethodPatch, "/api/v1/products/:id/images/:imageID",
		map[string]string{"is_main": "true"}, "", "", nil, owner.ID)
	c.SetParamNames("id", "imageID")
	c.SetParamValues(strconv.Itoa(int(prod.ID)), strconv.Itoa(int(second.ID)))
	require.NoError(t, h.PatchImage(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var a, b models.ProductImage
	require.NoError(t, db.First(&a, first.ID).Error)
	require.NoError(t, db.First(&b, second.ID).Error)
	assert.False(t, a.IsMain)
	assert.True(t, b.IsMain)
}

func TestDeleteImage(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &ProductImageHandler{DB: db, Media: &fakeMediaStore{}}

	owner := createUser(t, db, "owner", "")
	prod := createProduct(t, db, owner, "Bicicleta")
	img := models.ProductImage{ProductID: prod.ID, URL: "https://cdn.test/a.jpg"}
	require.NoError(t, db.Create(&img).Error)

	rec, c := jsonCtx(t, e, http.MethodDelete, "/api/v1/products/:id/images/:imageID", nil, owner.ID)
	c.SetParamNames("id", "imageID")
	c.SetParamValues(strconv.Itoa(int(prod.ID)), strconv.Itoa(int(img.ID)))
	require.NoError(t, h.DeleteImage(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
