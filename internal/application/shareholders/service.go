package shareholders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shareledger-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("Shareholder not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrCountryNotFound = errors.New("Country not found")
)

type Service struct {
	DB *gorm.DB
}

type CreateShareholderInput struct {
	Email       string
	Name        string
	PhoneNumber string
	CountryID   *uuid.UUID
}

type UpdateShareholderInput struct {
	Name        *string
	PhoneNumber *string
	CountryID   *uuid.UUID
}

func (s *Service) CreateShareholder(ctx context.Context, in CreateShareholderInput) (*domain.Shareholder, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Shareholder{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("Failed to create shareholder: %v", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if in.CountryID != nil {
		if err := s.DB.WithContext(ctx).First(&domain.Country{}, "country_id = ?", *in.CountryID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrCountryNotFound
			}
			return nil, err
		}
	}

	holder := &domain.Shareholder{
		Email:       in.Email,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		CountryID:   in.CountryID,
	}
	if err := s.DB.WithContext(ctx).Create(holder).Error; err != nil {
		return nil, fmt.Errorf("Failed to create shareholder: %v", err)
	}
	return s.GetShareholder(ctx, holder.ID)
}

func (s *Service) ListShareholders(ctx context.Context) ([]domain.Shareholder, error) {
	var holders []domain.Shareholder
	if err := s.DB.WithContext(ctx).Preload("Country").Order("created_at DESC").Find(&holders).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch shareholders: %v", err)
	}
	return holders, nil
}

func (s *Service) GetShareholder(ctx context.Context, id uuid.UUID) (*domain.Shareholder, error) {
	var holder domain.Shareholder
	if err := s.DB.WithContext(ctx).Preload("Country").Where("shareholder_id = ?", id).First(&holder).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &holder, nil
}

func (s *Service) UpdateShareholder(ctx context.Context, id uuid.UUID, in UpdateShareholderInput) (*domain.Shareholder, error) {
	holder, err := s.GetShareholder(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		holder.Name = *in.Name
	}
	if in.PhoneNumber != nil {
		holder.PhoneNumber = *in.PhoneNumber
	}
	if in.CountryID != nil {
		if err := s.DB.WithContext(ctx).First(&domain.Country{}, "country_id = ?", *in.CountryID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrCountryNotFound
			}
			return nil, err
		}
		holder.CountryID = in.CountryID
	}
	if err := s.DB.WithContext(ctx).Save(holder).Error; err != nil {
		return nil, fmt.Errorf("Failed to update shareholder: %v", err)
	}
	return s.GetShareholder(ctx, id)
}

// DeleteShareholder cascades to the shareholder's shares and their payments
// in one transaction, and records an audit event with the cascade counts.
// Financial rows are never left orphaned.
func (s *Service) DeleteShareholder(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetShareholder(ctx, id); err != nil {
		return err
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var shareIDs []uuid.UUID
	if err := tx.Model(&domain.Share{}).Where("shareholder_id = ?", id).Pluck("share_id", &shareIDs).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete shareholder: %v", err)
	}

	var paymentCount int64
	if len(shareIDs) > 0 {
		if err := tx.Model(&domain.Payment{}).Where("share_id IN ?", shareIDs).Count(&paymentCount).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("Failed to delete shareholder: %v", err)
		}
		if err := tx.Where("share_id IN ?", shareIDs).Delete(&domain.Payment{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("Failed to delete payments: %v", err)
		}
	}
	if err := tx.Where("shareholder_id = ?", id).Delete(&domain.Share{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete shares: %v", err)
	}
	if err := tx.Delete(&domain.Shareholder{}, "shareholder_id = ?", id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete shareholder: %v", err)
	}

	detailBytes, _ := json.Marshal(map[string]interface{}{
		"shares_deleted":   len(shareIDs),
		"payments_deleted": paymentCount,
	})
	if err := tx.Create(&domain.AuditEvent{
		EntityType: "shareholder",
		EntityID:   id,
		Action:     "cascade_delete",
		Details:    datatypes.JSON(detailBytes),
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to record audit event: %v", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("Failed to delete shareholder: %v", err)
	}
	return nil
}
