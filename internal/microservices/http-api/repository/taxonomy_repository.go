package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TaxonomyRepository stores one flat name/slug vocabulary (categories or genres).
type TaxonomyRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error)
	Create(ctx context.Context, taxon *models.Taxon) error
	FindBySlug(ctx context.Context, slug string) (*models.Taxon, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]models.Taxon, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type TaxonomyRepo struct {
	db    *gorm.DB
	table string
}

func NewCategoryRepo(db *gorm.DB) *TaxonomyRepo {
	return &TaxonomyRepo{db: db, table: models.Category{}.TableName()}
}

func NewGenreRepo(db *gorm.DB) *TaxonomyRepo {
	return &TaxonomyRepo{db: db, table: models.Genre{}.TableName()}
}

func (r *TaxonomyRepo) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *TaxonomyRepo) List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error) {
	var list []models.Taxon
	var total int64

	query := r.scoped(ctx)
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("name").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *TaxonomyRepo) Create(ctx context.Context, taxon *models.Taxon) error {
	if err := r.scoped(ctx).Create(taxon).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}

func (r *TaxonomyRepo) FindBySlug(ctx context.Context, slug string) (*models.Taxon, error) {
	var t models.Taxon
	if err := r.scoped(ctx).Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaxonomyRepo) FindBySlugs(ctx context.Context, slugs []string) ([]models.Taxon, error) {
	var list []models.Taxon
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.scoped(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TaxonomyRepo) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.scoped(ctx).Where("slug = ?", slug).Delete(&models.Taxon{})
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
