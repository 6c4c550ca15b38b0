package models

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is the permanent row written for every finished room.
type GameRecord struct {
	ID           uint   `gorm:"primaryKey"`
	RoomID       string `gorm:"index"`
	WinnerID     string
	WinnerName   string
	NumbersJSON  datatypes.JSON // called numbers in draw order
	PatternsJSON datatypes.JSON // matched winning pattern names
	StartedAt    time.Time
	FinishedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
