package models

import "time"

type TransactionType string

const (
	CreditTransaction TransactionType = "credit"
	DebitTransaction  TransactionType = "debit"
)

type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PlayerID     uint            `json:"player_id"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	Reason       string          `json:"reason"`
	BalanceAfter float64         `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
