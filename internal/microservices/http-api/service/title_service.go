package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	Get(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, actor Actor, req dto.CreateTitleRequest) (*models.Title, error)
	Update(ctx context.Context, actor Actor, id int64, req dto.UpdateTitleRequest) (*models.Title, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.TaxonomyRepository
	genreRepo    repository.TaxonomyRepository
	logger       *slog.Logger

	now func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.TaxonomyRepository,
	genreRepo repository.TaxonomyRepository,
	logger *slog.Logger,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	return s.titleRepo.List(ctx, filter, page, pageSize)
}

func (s *titleService) Get(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, fmt.Sprintf("title %d", id))
	}
	return t, nil
}

func (s *titleService) Create(ctx context.Context, actor Actor, req dto.CreateTitleRequest) (*models.Title, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, validationf("title name is required")
	}
	if err := s.checkYear(req.Year); err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, t); err != nil {
		return nil, translate(err, "title")
	}
	s.logger.InfoContext(ctx, "title created", "title_id", t.ID, "by", actor.Username)

	return s.Get(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, actor Actor, id int64, req dto.UpdateTitleRequest) (*models.Title, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, validationf("title name is required")
		}
		fields["name"] = *req.Name
	}
	if req.Year != nil {
		if err := s.checkYear(*req.Year); err != nil {
			return nil, err
		}
		fields["year"] = *req.Year
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		if categoryID == nil {
			fields["category_id"] = nil
		} else {
			fields["category_id"] = *categoryID
		}
	}

	var genres []models.Genre
	if req.Genre != nil {
		var err error
		if genres, err = s.resolveGenres(ctx, req.Genre); err != nil {
			return nil, err
		}
	}

	if len(fields) == 0 && genres == nil {
		// nothing to write, but the title must still exist
		return s.Get(ctx, id)
	}
	if err := s.titleRepo.Update(ctx, id, fields, genres); err != nil {
		return nil, translate(err, fmt.Sprintf("title %d", id))
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		return translate(err, fmt.Sprintf("title %d", id))
	}
	s.logger.InfoContext(ctx, "title deleted", "title_id", id, "by", actor.Username)
	return nil
}

func (s *titleService) checkYear(year int) error {
	if year > s.now().Year() {
		return validationf("year %d is in the future", year)
	}
	return nil
}

// resolveGenres maps slugs to genre rows; every slug must exist and the set must be non-empty.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}
	if len(unique) == 0 {
		return nil, validationf("at least one genre is required")
	}

	found, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		known := make(map[string]bool, len(found))
		for _, g := range found {
			known[g.Slug] = true
		}
		for _, slug := range unique {
			if !known[slug] {
				return nil, validationf("unknown genre %q", slug)
			}
		}
	}

	genres := make([]models.Genre, 0, len(found))
	for _, t := range found {
		genres = append(genres, models.Genre{Taxon: t})
	}
	return genres, nil
}

// resolveCategory returns nil for an empty slug.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*int64, error) {
	if slug == "" {
		return nil, nil
	}
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationf("unknown category %q", slug)
		}
		return nil, err
	}
	return &c.ID, nil
}
