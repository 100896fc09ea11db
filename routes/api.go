package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/jageocoder/abr-geocoder/app/controllers"
)

// SetupAPIRoutes wires the lookup API named in §6: GET /v1/geocode and
// GET /v1/suggest, the two synchronous endpoints the matcher supports.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	v1 := router.Group("/v1")
	{
		v1.GET("/geocode", addressController.Geocode)
		v1.GET("/suggest", addressController.Suggest)
	}
}

// SetupHealthRoutes wires the /healthz route named in §6.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/healthz", addressController.HealthCheck)
}
