package models

import (
	"time"
)

// Base contains common columns for all ledger tables. IDs are assigned by the
// database on insert and are never reused.
type Base struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
