package routes

import (
	"github.com/GenanawMekete/final-bingo/controllers"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// Player routes
	// ----------------------
	api.GET("/players/:external_id", controllers.GetPlayer) // Get player profile
}
