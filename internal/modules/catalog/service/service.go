package catalog

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"ramplog.app/backend/internal/entity"
	catalogRepo "ramplog.app/backend/internal/modules/catalog/repository"
	searchService "ramplog.app/backend/internal/modules/search/service"
	"ramplog.app/backend/pkg/cache"
)

// CachePrefix scopes every catalog cache key; admin mutations invalidate
// the whole prefix rather than tracking individual keys.
const CachePrefix = "catalog:"

const (
	keyTricks   = CachePrefix + "tricks"
	keyArticles = CachePrefix + "articles"
	keyProducts = CachePrefix + "products"
	keyParks    = CachePrefix + "parks"
)

// CatalogService serves shared catalog reads through the process cache and
// funnels admin writes through invalidation plus search re-indexing.
type CatalogService interface {
	Tricks(ctx context.Context) ([]entity.Trick, error)
	Articles(ctx context.Context) ([]entity.Article, error)
	Products(ctx context.Context) ([]entity.Product, error)
	Parks(ctx context.Context) ([]entity.Park, error)

	SaveTrick(ctx context.Context, trick *entity.Trick) error
	SaveArticle(ctx context.Context, article *entity.Article) error
	SaveProduct(ctx context.Context, product *entity.Product) error
	SavePark(ctx context.Context, park *entity.Park) error

	DeleteTrick(ctx context.Context, id uuid.UUID) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeletePark(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	repo   catalogRepo.CatalogRepository
	cache  *cache.Cache
	search searchService.SearchService
	ttl    time.Duration
}

func NewCatalogService(repo catalogRepo.CatalogRepository, c *cache.Cache, search searchService.SearchService, ttl time.Duration) CatalogService {
	return &catalogService{
		repo:   repo,
		cache:  c,
		search: search,
		ttl:    ttl,
	}
}

// cachedList fills one catalog key through the shared cache; concurrent
// misses on the same key share a single store fetch.
func cachedList[T any](ctx context.Context, c *cache.Cache, key string, ttl time.Duration, fetch func(context.Context) ([]T, error)) ([]T, error) {
	v, err := c.Fill(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	list, _ := v.([]T)
	return list, nil
}

func (s *catalogService) Tricks(ctx context.Context) ([]entity.Trick, error) {
	return cachedList(ctx, s.cache, keyTricks, s.ttl, s.repo.AllTricks)
}

func (s *catalogService) Articles(ctx context.Context) ([]entity.Article, error) {
	return cachedList(ctx, s.cache, keyArticles, s.ttl, s.repo.AllArticles)
}

func (s *catalogService) Products(ctx context.Context) ([]entity.Product, error) {
	return cachedList(ctx, s.cache, keyProducts, s.ttl, s.repo.AllProducts)
}

func (s *catalogService) Parks(ctx context.Context) ([]entity.Park, error) {
	return cachedList(ctx, s.cache, keyParks, s.ttl, s.repo.AllParks)
}

func (s *catalogService) invalidate() {
	s.cache.InvalidatePrefix(CachePrefix)
}

func (s *catalogService) SaveTrick(ctx context.Context, trick *entity.Trick) error {
	if err := s.repo.SaveTrick(ctx, trick); err != nil {
		return err
	}
	s.invalidate()
	if s.search != nil {
		go func(t entity.Trick) {
			if err := s.search.IndexTrick(&t); err != nil {
				log.Printf("failed to index trick %s: %v", t.ID, err)
			}
		}(*trick)
	}
	return nil
}

func (s *catalogService) SaveArticle(ctx context.Context, article *entity.Article) error {
	if err := s.repo.SaveArticle(ctx, article); err != nil {
		return err
	}
	s.invalidate()
	if s.search != nil {
		go func(a entity.Article) {
			if err := s.search.IndexArticle(&a); err != nil {
				log.Printf("failed to index article %s: %v", a.ID, err)
			}
		}(*article)
	}
	return nil
}

func (s *catalogService) SaveProduct(ctx context.Context, product *entity.Product) error {
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *catalogService) SavePark(ctx context.Context, park *entity.Park) error {
	if err := s.repo.SavePark(ctx, park); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *catalogService) DeleteTrick(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTrick(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	if s.search != nil {
		go func() {
			if err := s.search.DeleteTrick(id.String()); err != nil {
				log.Printf("failed to remove trick %s from index: %v", id, err)
			}
		}()
	}
	return nil
}

func (s *catalogService) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteArticle(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	if s.search != nil {
		go func() {
			if err := s.search.DeleteArticle(id.String()); err != nil {
				log.Printf("failed to remove article %s from index: %v", id, err)
			}
		}()
	}
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *catalogService) DeletePark(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePark(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}
