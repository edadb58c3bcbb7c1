package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"nomenclator/internal/model"
)

type NomenclatureRepository struct {
	db *gorm.DB
}

func NewNomenclatureRepository(db *gorm.DB) *NomenclatureRepository {
	return &NomenclatureRepository{db: db}
}

func (r *NomenclatureRepository) Create(ctx context.Context, record *model.Nomenclature) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create nomenclature failed: %w", err)
	}
	return nil
}

// ListAll returns every saved nomenclature in insertion (id) order.
func (r *NomenclatureRepository) ListAll(ctx context.Context) ([]model.Nomenclature, error) {
	var records []model.Nomenclature
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list nomenclatures failed: %w", err)
	}
	return records, nil
}
