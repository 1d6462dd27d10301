package repository

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/models"

	"gorm.io/gorm"
)

// ListPostsQuery carries the validated filter, sort and pagination inputs
// for a post listing.
type ListPostsQuery struct {
	ViewerID          *uint
	TagIDs            []uint
	Author            string
	MinReadingTime    *int
	MaxReadingTime    *int
	CommunityID       *uint
	OnlyMyCommunities bool
	Sorting           models.PostSorting
	Page              int
	Size              int
}

// PostRepository defines data access methods for posts and likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []models.Tag) error
	// Get loads a post regardless of viewer visibility. Used by internal
	// consumers such as the mail outbox.
	Get(ctx context.Context, id uint) (*models.Post, error)
	// GetVisible loads a post through the viewer's visibility predicate.
	GetVisible(ctx context.Context, id uint, viewerID *uint) (*models.Post, error)
	List(ctx context.Context, q ListPostsQuery) ([]*models.Post, int64, error)
	Like(ctx context.Context, postID, userID uint) error
	Unlike(ctx context.Context, postID, userID uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// readableBy restricts a post query to what the viewer may see: posts
// outside any community, posts in open communities, and posts in closed
// communities the viewer created or belongs to. Anonymous viewers get the
// first two arms only.
func readableBy(viewerID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == nil {
			return db.Where(`posts.community_id IS NULL OR EXISTS (
				SELECT 1 FROM communities c
				WHERE c.id = posts.community_id AND NOT c.is_closed)`)
		}
		return db.Where(`posts.community_id IS NULL OR EXISTS (
			SELECT 1 FROM communities c
			WHERE c.id = posts.community_id AND (
				NOT c.is_closed
				OR c.creator_id = ?
				OR EXISTS (
					SELECT 1 FROM community_memberships m
					WHERE m.community_id = c.id AND m.user_id = ?)))`,
			*viewerID, *viewerID)
	}
}

// filterScopes returns the listing filters in a fixed order so the generated
// SQL is stable: author, reading time bounds, community, membership, tags.
func (q ListPostsQuery) filterScopes() []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{readableBy(q.ViewerID)}

	if q.Author != "" {
		author := q.Author
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`posts.author_id IN (
				SELECT u.id FROM users u WHERE u.full_name LIKE ?)`,
				"%"+author+"%")
		})
	}
	if q.MinReadingTime != nil {
		minRT := *q.MinReadingTime
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("posts.reading_time >= ?", minRT)
		})
	}
	if q.MaxReadingTime != nil {
		maxRT := *q.MaxReadingTime
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("posts.reading_time <= ?", maxRT)
		})
	}
	if q.CommunityID != nil {
		communityID := *q.CommunityID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("posts.community_id = ?", communityID)
		})
	}
	if q.OnlyMyCommunities {
		viewerID := q.ViewerID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			if viewerID == nil {
				// An anonymous viewer belongs to no community.
				return db.Where("1 = 0")
			}
			return db.Where(`posts.community_id IS NOT NULL AND EXISTS (
				SELECT 1 FROM communities c
				WHERE c.id = posts.community_id AND (
					c.creator_id = ?
					OR EXISTS (
						SELECT 1 FROM community_memberships m
						WHERE m.community_id = c.id AND m.user_id = ?)))`,
				*viewerID, *viewerID)
		})
	}
	if len(q.TagIDs) > 0 {
		tagIDs := q.TagIDs
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(`EXISTS (
				SELECT 1 FROM post_tags pt
				WHERE pt.post_id = posts.id AND pt.tag_id IN ?)`, tagIDs)
		})
	}

	return scopes
}

// applyPostDetails attaches the computed columns: likes, comment count and
// whether the viewer liked the post.
func applyPostDetails(db *gorm.DB, viewerID *uint) *gorm.DB {
	likedExpr := "FALSE AS liked"
	args := []interface{}{}
	if viewerID != nil {
		likedExpr = `EXISTS (
			SELECT 1 FROM likes
			WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked`
		args = append(args, *viewerID)
	}

	return db.Select(fmt.Sprintf(`posts.*,
		(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
		(SELECT COUNT(*) FROM comments
			WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count,
		%s`, likedExpr), args...)
}

// applySort orders the query. An unknown sorting is a programming error;
// callers validate input before it reaches this layer.
func applySort(db *gorm.DB, sorting models.PostSorting) *gorm.DB {
	switch sorting {
	case "":
		return db
	case models.SortCreateAsc:
		return db.Order("posts.created_at ASC")
	case models.SortCreateDesc:
		return db.Order("posts.created_at DESC")
	case models.SortLikeAsc:
		return db.Order("likes_count ASC")
	case models.SortLikeDesc:
		return db.Order("likes_count DESC")
	default:
		panic(fmt.Sprintf("unknown post sorting %q", sorting))
	}
}

// List returns one page of posts matching the query plus the total count of
// matches before pagination.
func (r *postRepository) List(ctx context.Context, q ListPostsQuery) ([]*models.Post, int64, error) {
	scopes := q.filterScopes()

	var total int64
	countQuery := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageQuery := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...)
	pageQuery = applyPostDetails(pageQuery, q.ViewerID)
	pageQuery = applySort(pageQuery, q.Sorting)

	var posts []*models.Post
	err := pageQuery.
		Preload("Author").
		Preload("Community").
		Preload("Tags").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetVisible(ctx context.Context, id uint, viewerID *uint) (*models.Post, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(readableBy(viewerID))
	query = applyPostDetails(query, viewerID)

	var post models.Post
	err := query.
		Preload("Author").
		Preload("Community").
		Preload("Tags").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post not found")
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(post).Association("Tags").Append(&tags); err != nil {
				return err
			}
		}
		return nil
	})
}

// Like inserts the like row. The unique (user_id, post_id) index makes the
// operation race-free: a concurrent duplicate surfaces as the same
// validation error a sequential duplicate would.
func (r *postRepository) Like(ctx context.Context, postID, userID uint) error {
	like := models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already liked this post.")
		}
		return err
	}
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewValidationError("User did not like this post.")
	}
	return nil
}
