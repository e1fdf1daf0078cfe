package models

// Card is a display-only record of a payment card. It carries no balance.
type Card struct {
	Base
	Name   string  `gorm:"not null;index" json:"name"`
	Number string  `gorm:"not null" json:"number"`
	Color  string  `json:"color,omitempty"`
	Icon   IconTag `json:"icon,omitempty"`
}
