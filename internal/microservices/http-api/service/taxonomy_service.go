package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// TaxonomyService manages one vocabulary: categories or genres.
type TaxonomyService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error)
	Create(ctx context.Context, actor Actor, name, slug string) (*models.Taxon, error)
	Delete(ctx context.Context, actor Actor, slug string) error
}

type taxonomyPage struct {
	items []models.Taxon
	total int64
}

type taxonomyService struct {
	kind   string
	repo   repository.TaxonomyRepository
	cache  *gocache.Cache
	loads  singleflight.Group
	logger *slog.Logger

	// generation bumps on every write so a load racing a write is not cached
	generation atomic.Uint64
}

// NewTaxonomyService caches unfiltered list pages for ttl; any write flushes the cache.
func NewTaxonomyService(kind string, repo repository.TaxonomyRepository, ttl time.Duration, logger *slog.Logger) TaxonomyService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &taxonomyService{
		kind:   kind,
		repo:   repo,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func (s *taxonomyService) List(ctx context.Context, search string, page, pageSize int) ([]models.Taxon, int64, error) {
	if search != "" {
		return s.repo.List(ctx, search, page, pageSize)
	}

	key := fmt.Sprintf("%d:%d", page, pageSize)
	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordCacheLookup(s.kind, true)
		p := cached.(taxonomyPage)
		return p.items, p.total, nil
	}
	metrics.RecordCacheLookup(s.kind, false)

	gen := s.generation.Load()
	v, err, _ := s.loads.Do(fmt.Sprintf("%d:%s", gen, key), func() (any, error) {
		items, total, err := s.repo.List(ctx, "", page, pageSize)
		if err != nil {
			return nil, err
		}
		p := taxonomyPage{items: items, total: total}
		if s.generation.Load() == gen {
			s.cache.SetDefault(key, p)
		}
		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}
	p := v.(taxonomyPage)
	return p.items, p.total, nil
}

func (s *taxonomyService) invalidate() {
	s.generation.Add(1)
	s.cache.Flush()
}

func (s *taxonomyService) Create(ctx context.Context, actor Actor, name, slug string) (*models.Taxon, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" || len(name) > 256 {
		return nil, validationf("%s name must be 1-256 characters", s.kind)
	}
	if !models.ValidSlug(slug) {
		return nil, validationf("invalid %s slug %q", s.kind, slug)
	}

	t := &models.Taxon{Name: name, Slug: slug}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, translate(err, fmt.Sprintf("%s %q", s.kind, slug))
	}
	s.invalidate()
	s.logger.InfoContext(ctx, s.kind+" created", "slug", slug, "by", actor.Username)
	return t, nil
}

func (s *taxonomyService) Delete(ctx context.Context, actor Actor, slug string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return translate(err, fmt.Sprintf("%s %q", s.kind, slug))
	}
	s.invalidate()
	s.logger.InfoContext(ctx, s.kind+" deleted", "slug", slug, "by", actor.Username)
	return nil
}
