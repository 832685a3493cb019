package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ratingColumn derives the mean review score in the same statement that reads the title.
// NULL when the title has no reviews.
const ratingColumn = "(SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows a title listing; zero values are ignored.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, title *models.Title) error
	// Update writes fields and, when genres is non-nil, replaces the genre set, in one transaction.
	Update(ctx context.Context, id int64, fields map[string]any, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) filtered(ctx context.Context, filter TitleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.CategorySlug != "" {
		query = query.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", filter.CategorySlug)
	}
	if filter.GenreSlug != "" {
		query = query.Where(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = titles.id AND g.slug = ?)`, filter.GenreSlug)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		query = query.Where("titles.year = ?", filter.Year)
	}
	return query
}

func (r *TitleRepo) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.filtered(ctx, filter).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres").
		Order("titles.id").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres").
		Where("titles.id = ?", id).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	// Category is referenced through CategoryID only; genre rows already exist
	if err := r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *TitleRepo) Update(ctx context.Context, id int64, fields map[string]any, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		title := &models.Title{ID: id}
		if len(fields) > 0 {
			result := tx.Model(title).Updates(fields)
			if result.Error != nil {
				return fmt.Errorf("update title: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if genres != nil {
			if err := tx.Model(title).Association("Genres").Replace(genres); err != nil {
				return fmt.Errorf("replace title genres: %w", err)
			}
		}
		return nil
	})
}

func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	// title_genres rows go through the join table cascade
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
