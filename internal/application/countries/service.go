package countries

import (
	"context"
	"errors"
	"fmt"

	"shareledger-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("Country not found")
	ErrISOCodeTaken      = errors.New("iso_code already exists")
	ErrCurrencyCodeTaken = errors.New("currency_code already exists")
)

type Service struct {
	DB *gorm.DB
}

type CreateCountryInput struct {
	Name           string
	ISOCode        string
	CurrencyCode   string
	CurrencySymbol string
}

func (s *Service) CreateCountry(ctx context.Context, in CreateCountryInput) (*domain.Country, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Country{}).Where("iso_code = ?", in.ISOCode).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("Failed to create country: %v", err)
	}
	if count > 0 {
		return nil, ErrISOCodeTaken
	}
	if err := s.DB.WithContext(ctx).Model(&domain.Country{}).Where("currency_code = ?", in.CurrencyCode).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("Failed to create country: %v", err)
	}
	if count > 0 {
		return nil, ErrCurrencyCodeTaken
	}

	country := &domain.Country{
		Name:           in.Name,
		ISOCode:        in.ISOCode,
		CurrencyCode:   in.CurrencyCode,
		CurrencySymbol: in.CurrencySymbol,
	}
	if err := s.DB.WithContext(ctx).Create(country).Error; err != nil {
		return nil, fmt.Errorf("Failed to create country: %v", err)
	}
	return country, nil
}

func (s *Service) ListCountries(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	if err := s.DB.WithContext(ctx).Order("name").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch countries: %v", err)
	}
	return countries, nil
}

func (s *Service) GetCountry(ctx context.Context, id uuid.UUID) (*domain.Country, error) {
	var country domain.Country
	if err := s.DB.WithContext(ctx).Where("country_id = ?", id).First(&country).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &country, nil
}

// DeleteCountry removes reference data. Shareholders pointing at the country
// are detached (country set to NULL), never deleted.
func (s *Service) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	var country domain.Country
	if err := s.DB.WithContext(ctx).Where("country_id = ?", id).First(&country).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Model(&domain.Shareholder{}).Where("country_id = ?", id).Update("country_id", nil).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to detach shareholders: %v", err)
	}
	if err := tx.Delete(&domain.Country{}, "country_id = ?", id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete country: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("Failed to delete country: %v", err)
	}
	return nil
}
