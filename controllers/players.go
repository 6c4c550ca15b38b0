package controllers

import (
	"errors"
	"net/http"

	"github.com/GenanawMekete/final-bingo/config"
	"github.com/GenanawMekete/final-bingo/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetPlayer fetches a player profile by external id
func GetPlayer(c *gin.Context) {
	externalID := c.Param("external_id")

	var profile models.PlayerProfile
	if err := config.DB.Where("external_id = ?", externalID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
