package store

import (
	"encoding/json"

	"github.com/GenanawMekete/final-bingo/game"
	"github.com/GenanawMekete/final-bingo/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Archive persists finished-game results.
type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) SaveResult(res game.GameResult) error {
	numbers, err := json.Marshal(res.CalledNumbers)
	if err != nil {
		return err
	}
	names := make([]string, len(res.Patterns))
	for i, p := range res.Patterns {
		names[i] = p.Name
	}
	patterns, err := json.Marshal(names)
	if err != nil {
		return err
	}

	record := models.GameRecord{
		RoomID:       res.RoomID,
		WinnerID:     res.WinnerID,
		WinnerName:   res.WinnerName,
		NumbersJSON:  datatypes.JSON(numbers),
		PatternsJSON: datatypes.JSON(patterns),
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
	}
	return a.db.Create(&record).Error
}
