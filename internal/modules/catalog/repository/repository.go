package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
)

type CatalogRepository interface {
	AllTricks(ctx context.Context) ([]entity.Trick, error)
	AllArticles(ctx context.Context) ([]entity.Article, error)
	AllProducts(ctx context.Context) ([]entity.Product, error)
	AllParks(ctx context.Context) ([]entity.Park, error)

	FindTrick(ctx context.Context, id uuid.UUID) (*entity.Trick, error)
	FindArticle(ctx context.Context, id uuid.UUID) (*entity.Article, error)

	SaveTrick(ctx context.Context, trick *entity.Trick) error
	SaveArticle(ctx context.Context, article *entity.Article) error
	SaveProduct(ctx context.Context, product *entity.Product) error
	SavePark(ctx context.Context, park *entity.Park) error

	DeleteTrick(ctx context.Context, id uuid.UUID) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeletePark(ctx context.Context, id uuid.UUID) error

	// AddTrickViews folds a redis-buffered view delta into the stored
	// counter without touching updated_at, so view traffic never churns
	// catalog fingerprints.
	AddTrickViews(ctx context.Context, id uuid.UUID, delta int64) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) AllTricks(ctx context.Context) ([]entity.Trick, error) {
	var tricks []entity.Trick
	err := r.db.WithContext(ctx).Order("difficulty asc, name asc").Find(&tricks).Error
	return tricks, err
}

func (r *catalogRepository) AllArticles(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&articles).Error
	return articles, err
}

func (r *catalogRepository) AllProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).Order("name asc").Find(&products).Error
	return products, err
}

func (r *catalogRepository) AllParks(ctx context.Context) ([]entity.Park, error) {
	var parks []entity.Park
	err := r.db.WithContext(ctx).Order("name asc").Find(&parks).Error
	return parks, err
}

func (r *catalogRepository) FindTrick(ctx context.Context, id uuid.UUID) (*entity.Trick, error) {
	var trick entity.Trick
	err := r.db.WithContext(ctx).First(&trick, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trick, nil
}

func (r *catalogRepository) FindArticle(ctx context.Context, id uuid.UUID) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).First(&article, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *catalogRepository) SaveTrick(ctx context.Context, trick *entity.Trick) error {
	return r.db.WithContext(ctx).Save(trick).Error
}

func (r *catalogRepository) SaveArticle(ctx context.Context, article *entity.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *catalogRepository) SaveProduct(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *catalogRepository) SavePark(ctx context.Context, park *entity.Park) error {
	return r.db.WithContext(ctx).Save(park).Error
}

func (r *catalogRepository) DeleteTrick(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Trick{}, "id = ?", id).Error
}

func (r *catalogRepository) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Article{}, "id = ?", id).Error
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *catalogRepository) DeletePark(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Park{}, "id = ?", id).Error
}

func (r *catalogRepository) AddTrickViews(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Trick{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", delta)).Error
}
