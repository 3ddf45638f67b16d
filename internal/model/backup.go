package model

import "time"

// Backup is the JSON backup/restore file format. Restore is a destructive
// replace of all four collections.
type Backup struct {
	Products           map[string]Product `json:"products"`
	Transactions       []Transaction      `json:"transactions"`
	ProjectAllocations Allocations        `json:"projectAllocations"`
	Categories         []string           `json:"categories"`
	BackupDate         time.Time          `json:"backupDate"`
}

// DefaultCategories is the category vocabulary used when none was ever saved.
func DefaultCategories() []string {
	return []string{"Default"}
}
