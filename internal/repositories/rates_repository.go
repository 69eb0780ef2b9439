package repositories

import (
	"context"
	"errors"
	"fmt"

	"ratesvc/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRatesConfigNotFound  = errors.New("rates config not found")
	ErrDuplicateRatesConfig = errors.New("rates config already exists")
	ErrStaleTimestamp       = errors.New("sale timestamp is older than the stored one")
)

// RatesRepository persists the configuration of rates contracts.
type RatesRepository interface {
	Create(ctx context.Context, cfg *models.RatesConfig) error
	GetByContract(ctx context.Context, contract string) (*models.RatesConfig, error)
	UpdateRates(ctx context.Context, contract string, rates models.RateEntries) error
	UpdateLastTimestamp(ctx context.Context, contract string, ts uint64) error
}

type ratesRepository struct {
	db *gorm.DB
}

func NewRatesRepository(db *gorm.DB) RatesRepository {
	return &ratesRepository{db: db}
}

func (r *ratesRepository) Create(ctx context.Context, cfg *models.RatesConfig) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "contract_address"}}, DoNothing: true}).
		Create(cfg)
	if result.Error != nil {
		return fmt.Errorf("failed to create rates config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateRatesConfig
	}
	return nil
}

func (r *ratesRepository) GetByContract(ctx context.Context, contract string) (*models.RatesConfig, error) {
	var cfg models.RatesConfig
	if err := r.db.WithContext(ctx).Where("contract_address = ?", contract).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatesConfigNotFound
		}
		return nil, fmt.Errorf("failed to get rates config: %w", err)
	}
	return &cfg, nil
}

// UpdateRates replaces the whole rate list.
func (r *ratesRepository) UpdateRates(ctx context.Context, contract string, rates models.RateEntries) error {
	return r.update(ctx, contract, "rates", rates)
}

// UpdateLastTimestamp only ever moves the clock forward. The comparison runs in
// the UPDATE itself so concurrent writers cannot store an older value.
func (r *ratesRepository) UpdateLastTimestamp(ctx context.Context, contract string, ts uint64) error {
	result := r.advanceClock(ctx, contract, ts)
	if result.Error != nil {
		return fmt.Errorf("failed to update last_timestamp: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RatesConfig{}).
		Where("contract_address = ?", contract).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check rates config: %w", err)
	}
	if count == 0 {
		return ErrRatesConfigNotFound
	}
	return ErrStaleTimestamp
}

func (r *ratesRepository) advanceClock(ctx context.Context, contract string, ts uint64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.RatesConfig{}).
		Where("contract_address = ? AND last_timestamp <= ?", contract, ts).
		Update("last_timestamp", ts)
}

func (r *ratesRepository) update(ctx context.Context, contract, column string, value interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.RatesConfig{}).
		Where("contract_address = ?", contract).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRatesConfigNotFound
	}
	return nil
}
