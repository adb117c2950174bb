package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Country is reference data: where a shareholder is registered and which
// currency their amounts are labelled in.
type Country struct {
	ID             uuid.UUID `gorm:"column:country_id;type:uuid;primaryKey" json:"country_id"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	ISOCode        string    `gorm:"column:iso_code;type:varchar(2);not null;uniqueIndex" json:"iso_code"`
	CurrencyCode   string    `gorm:"column:currency_code;type:varchar(3);not null;uniqueIndex" json:"currency_code"`
	CurrencySymbol string    `gorm:"column:currency_symbol;type:varchar(5)" json:"currency_symbol"`
}

func (Country) TableName() string {
	return "countries"
}

func (c *Country) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
