package models

import "time"

// ChangeOp is the kind of mutation recorded in the change journal.
type ChangeOp string

const (
	ChangeOpCreate ChangeOp = "create"
	ChangeOpUpdate ChangeOp = "update"
	ChangeOpDelete ChangeOp = "delete"
	ChangeOpReset  ChangeOp = "reset"
)

// Journal table names.
const (
	TableCategories   = "categories"
	TableAccounts     = "accounts"
	TableTransactions = "transactions"
	TableBudgets      = "budgets"
	TableCards        = "cards"
)

// ChangeRecord is one row of the change journal. Seq is strictly increasing,
// so a subscriber that sees a gap can replay from the last Seq it observed.
type ChangeRecord struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"seq"`
	Table     string    `gorm:"column:table_name;not null;index" json:"table"`
	Op        ChangeOp  `gorm:"not null" json:"op"`
	RecordID  uint      `json:"record_id"`
	Payload   string    `json:"payload,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName overrides the default "change_records".
func (ChangeRecord) TableName() string {
	return "changes"
}
