package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommunityRepository defines data access methods for communities and their
// memberships.
type CommunityRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, community *models.Community) error
	List(ctx context.Context) ([]models.Community, error)
	AddMember(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	RemoveMember(ctx context.Context, communityID, userID uint) error
	GetMember(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error)
	UpdateMemberRole(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	CanPost(ctx context.Context, communityID, userID uint) (bool, error)
	SubscriberIDs(ctx context.Context, communityID uint) ([]uint, error)
}

type communityRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewCommunityRepository(db *gorm.DB, rdb *redis.Client) CommunityRepository {
	return &communityRepository{db: db, rdb: rdb}
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	return cache.Aside(ctx, r.rdb, cache.CommunityKey(id), "community", cache.CommunityTTL, func() (*models.Community, error) {
		var community models.Community
		if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Community not found")
			}
			return nil, err
		}
		return &community, nil
	})
}

func (r *communityRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		// The creator administers their own community.
		membership := models.CommunityMembership{
			CommunityID: community.ID,
			UserID:      community.CreatorID,
			Role:        models.CommunityRoleAdmin,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Community name already taken")
		}
		return err
	}
	return nil
}

func (r *communityRepository) List(ctx context.Context) ([]models.Community, error) {
	var communities []models.Community
	if err := r.db.WithContext(ctx).Order("name").Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

func (r *communityRepository) AddMember(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	membership := models.CommunityMembership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
	}
	if err := r.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User is already a member of this community")
		}
		return err
	}
	return nil
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewValidationError("User is not a member of this community")
	}
	return nil
}

func (r *communityRepository) GetMember(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error) {
	var membership models.CommunityMembership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Membership not found")
		}
		return nil, err
	}
	return &membership, nil
}

func (r *communityRepository) UpdateMemberRole(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	result := r.db.WithContext(ctx).Model(&models.CommunityMembership{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Membership not found")
	}
	return nil
}

// CanPost reports whether the user may publish into the community: either
// its creator or a member holding the admin role.
func (r *communityRepository) CanPost(ctx context.Context, communityID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Community{}).
		Where("id = ? AND creator_id = ?", communityID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).Model(&models.CommunityMembership{}).
		Where("community_id = ? AND user_id = ? AND role = ?", communityID, userID, models.CommunityRoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityRepository) SubscriberIDs(ctx context.Context, communityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommunityMembership{}).
		Where("community_id = ?", communityID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
