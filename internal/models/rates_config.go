package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RatesConfig is the persisted state of one rates contract: its configured
// rate list and the decay clock.
type RatesConfig struct {
	ID              uint           `gorm:"primarykey" json:"-"`
	ContractAddress string         `gorm:"uniqueIndex;not null" json:"contract_address"`
	Owner           string         `gorm:"not null" json:"owner"`
	Operators       pq.StringArray `gorm:"type:text[]" json:"operators"`
	Rates           RateEntries    `gorm:"type:jsonb;not null" json:"rates"`
	LastTimestamp   uint64         `gorm:"not null;default:0" json:"last_timestamp"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (c *RatesConfig) BeforeCreate(tx *gorm.DB) error {
	// A fresh contract has never evaluated a sale
	c.LastTimestamp = 0
	if c.Rates == nil {
		c.Rates = RateEntries{}
	}
	return nil
}

// IsOperator reports whether addr may manage the rate list.
func (c *RatesConfig) IsOperator(addr string) bool {
	if addr == c.Owner {
		return true
	}
	for _, op := range c.Operators {
		if op == addr {
			return true
		}
	}
	return false
}
