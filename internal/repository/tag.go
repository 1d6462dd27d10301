package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// TagRepository defines data access methods for tags.
type TagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	CountByIDs(ctx context.Context, ids []uint) (int64, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
}

type tagRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewTagRepository(db *gorm.DB, rdb *redis.Client) TagRepository {
	return &tagRepository{db: db, rdb: rdb}
}

func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	return cache.Aside(ctx, r.rdb, cache.TagListKey(), "tags", cache.TagListTTL, func() ([]models.Tag, error) {
		var tags []models.Tag
		if err := r.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
			return nil, err
		}
		return tags, nil
	})
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag not found")
		}
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Tag name already taken")
		}
		return err
	}
	cache.Invalidate(ctx, r.rdb, cache.TagListKey())
	return nil
}

// CountByIDs returns how many of the given distinct tag IDs exist.
func (r *tagRepository) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *tagRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
