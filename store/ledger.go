package store

import (
	"github.com/GenanawMekete/final-bingo/game"
	"github.com/GenanawMekete/final-bingo/models"

	"gorm.io/gorm"
)

// Ledger is the coin-balance collaborator backed by gorm. Every
// balance change happens inside a DB transaction together with its
// Transaction row.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Credit(playerID string, amount float64, reason string) error {
	return l.adjust(playerID, amount, models.CreditTransaction, reason)
}

// Debit fails with game.ErrInsufficientFunds if the balance does not
// cover the amount.
func (l *Ledger) Debit(playerID string, amount float64, reason string) error {
	return l.adjust(playerID, -amount, models.DebitTransaction, reason)
}

func (l *Ledger) adjust(playerID string, delta float64, kind models.TransactionType, reason string) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var profile models.PlayerProfile
		if err := tx.Where("external_id = ?", playerID).First(&profile).Error; err != nil {
			return err
		}

		if profile.Balance+delta < 0 {
			return game.ErrInsufficientFunds
		}
		profile.Balance += delta
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		record := models.Transaction{
			PlayerID:     profile.ID,
			Type:         kind,
			Amount:       delta,
			Reason:       reason,
			BalanceAfter: profile.Balance,
		}
		if delta < 0 {
			record.Amount = -delta
		}
		return tx.Create(&record).Error
	})
}
