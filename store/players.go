package store

import (
	"errors"

	"github.com/GenanawMekete/final-bingo/models"

	"gorm.io/gorm"
)

// ProfileStore is the player-profile collaborator backed by gorm.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetOrCreatePlayer returns the profile for an opaque external id,
// creating it on first sight.
func (s *ProfileStore) GetOrCreatePlayer(externalID, name string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	err := s.db.Where("external_id = ?", externalID).First(&profile).Error
	if err == nil {
		if name != "" && name != profile.Name {
			if err := s.db.Model(&profile).Update("name", name).Error; err != nil {
				return nil, err
			}
			profile.Name = name
		}
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile = models.PlayerProfile{
		ExternalID: externalID,
		Name:       name,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetPlayer fetches a profile by external id.
func (s *ProfileStore) GetPlayer(externalID string) (*models.PlayerProfile, error) {
	var profile models.PlayerProfile
	if err := s.db.Where("external_id = ?", externalID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
