package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shareholder owns shares. Country is optional reference data; deleting a
// country detaches its shareholders rather than removing them.
type Shareholder struct {
	ID          uuid.UUID  `gorm:"column:shareholder_id;type:uuid;primaryKey" json:"shareholder_id"`
	Email       string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name        string     `gorm:"column:name;not null;index" json:"name"`
	PhoneNumber string     `gorm:"column:phone_number;type:varchar(20)" json:"phone_number"`
	CountryID   *uuid.UUID `gorm:"column:country_id;type:uuid" json:"country_id"`
	Country     *Country   `gorm:"foreignKey:CountryID;constraint:OnDelete:SET NULL" json:"country,omitempty"`
	CreatedAt   time.Time  `json:"created_on"`
	UpdatedAt   time.Time  `json:"updated_on"`
}

func (Shareholder) TableName() string {
	return "shareholders"
}

func (s *Shareholder) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
