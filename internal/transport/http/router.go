package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/handlers"
	"github.com/lucasbessegato/TrokaiBackend/internal/service/token"
)

type Deps struct {
	DB                  *gorm.DB
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	CategoryHandler     *handlers.CategoryHandler
	ProductHandler      *handlers.ProductHandler
	ProductImageHandler *handlers.ProductImageHandler
	ProposalHandler     *handlers.ProposalHandler
	NotificationHandler *handlers.NotificationHandler
	RatingHandler       *handlers.RatingHandler
	SearchHandler       *handlers.SearchHandler
	TokenService        *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/categories", d.CategoryHandler.GetCategories)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/images", d.ProductImageHandler.ListImages)

	auth := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	auth.GET("/users/:id", d.UserHandler.GetUser)
	auth.PATCH("/users/:id", d.UserHandler.UpdateUser)
	auth.GET("/users/:id/ratings", d.RatingHandler.GetRatings)
	auth.POST("/users/:id/ratings", d.RatingHandler.CreateRating)

	auth.POST("/products", d.ProductHandler.CreateProduct)
	auth.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	auth.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	auth.POST("/products/:id/images", d.ProductImageHandler.CreateImage)
	auth.PATCH("/products/:id/images/:imageID", d.ProductImageHandler.PatchImage)
	auth.DELETE("/products/:id/images/:imageID", d.ProductImageHandler.DeleteImage)

	auth.GET("/proposal", d.ProposalHandler.GetProposals)
	auth.GET("/proposal/:id", d.ProposalHandler.GetProposal)
	auth.POST("/proposal", d.ProposalHandler.CreateProposal)
	auth.PATCH("/proposal/:id/status", d.ProposalHandler.UpdateProposalStatus)

	auth.GET("/notifications", d.NotificationHandler.GetNotifications)
	auth.PATCH("/notifications/:id/read", d.NotificationHandler.MarkRead)
}
