package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/jageocoder/abr-geocoder/app/controllers"
)

// SetupWebRoutes wires the root informational route.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "abr-geocoder",
			"endpoints": map[string]string{
				"geocode": "GET /v1/geocode?q=",
				"suggest": "GET /v1/suggest?q=",
				"health":  "GET /healthz",
			},
		})
	})
}

// SetupAllRoutes assembles every route group onto router.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
