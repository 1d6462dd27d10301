// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/google/uuid"
)

const defaultPageSize = 5

// SubscriberNotifier enqueues a new-post notification for the subscribers of
// the post's community. Implementations must not block the caller.
type SubscriberNotifier interface {
	NotifySubscribersAboutNewPost(postID uint)
}

type PostService struct {
	postRepo      repository.PostRepository
	userRepo      repository.UserRepository
	communityRepo repository.CommunityRepository
	tagRepo       repository.TagRepository
	notifier      SubscriberNotifier
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Description string
	ReadingTime int
	ImageURL    string
	AddressID   *uuid.UUID
	CommunityID *uint
	TagIDs      []uint
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	tagRepo repository.TagRepository,
	notifier SubscriberNotifier,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		userRepo:      userRepo,
		communityRepo: communityRepo,
		tagRepo:       tagRepo,
		notifier:      notifier,
	}
}

// ListPosts validates the query inputs and returns one page of posts visible
// to the viewer, with the total match count computed before pagination.
func (s *PostService) ListPosts(ctx context.Context, q repository.ListPostsQuery) (*models.PostPage, error) {
	if q.ViewerID != nil {
		exists, err := s.userRepo.Exists(ctx, *q.ViewerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.NewNotFoundError("Non-existent user")
		}
	}

	if q.CommunityID != nil {
		exists, err := s.communityRepo.Exists(ctx, *q.CommunityID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.NewNotFoundError("Community not found")
		}
	}

	if len(q.TagIDs) > 0 {
		if err := s.checkTagsExist(ctx, q.TagIDs); err != nil {
			return nil, err
		}
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = defaultPageSize
	}

	posts, total, err := s.postRepo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &models.PostPage{
		Posts: posts,
		Pagination: models.PageInfo{
			Page:  q.Page,
			Size:  q.Size,
			Total: total,
		},
	}, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint, viewerID *uint) (*models.Post, error) {
	if viewerID != nil {
		exists, err := s.userRepo.Exists(ctx, *viewerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, models.NewNotFoundError("Non-existent user")
		}
	}
	return s.postRepo.GetVisible(ctx, postID, viewerID)
}

// CreatePost publishes a post, optionally into a community the author may
// post in, and enqueues subscriber notifications after the write commits.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (uint, error) {
	if in.CommunityID != nil {
		exists, err := s.communityRepo.Exists(ctx, *in.CommunityID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, models.NewNotFoundError("Community not found")
		}

		canPost, err := s.communityRepo.CanPost(ctx, *in.CommunityID, in.AuthorID)
		if err != nil {
			return 0, err
		}
		if !canPost {
			return 0, models.NewNotFoundError("User is not able to post in the community")
		}
	}

	authorExists, err := s.userRepo.Exists(ctx, in.AuthorID)
	if err != nil {
		return 0, err
	}
	if !authorExists {
		return 0, models.NewNotFoundError("User not found")
	}

	if in.Title == "" {
		return 0, models.NewValidationError("Title is required")
	}
	if len(in.Title) > 300 {
		return 0, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Description == "" {
		return 0, models.NewValidationError("Description is required")
	}
	if in.ReadingTime <= 0 {
		return 0, models.NewValidationError("Reading time must be positive")
	}

	var tags []models.Tag
	if len(in.TagIDs) > 0 {
		if err := s.checkTagsExist(ctx, in.TagIDs); err != nil {
			return 0, err
		}
		tags, err = s.tagRepo.GetByIDs(ctx, in.TagIDs)
		if err != nil {
			return 0, err
		}
	}

	post := &models.Post{
		Title:       in.Title,
		Description: in.Description,
		ReadingTime: in.ReadingTime,
		ImageURL:    in.ImageURL,
		AddressID:   in.AddressID,
		AuthorID:    in.AuthorID,
		CommunityID: in.CommunityID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post, tags); err != nil {
		return 0, err
	}

	if s.notifier != nil {
		s.notifier.NotifySubscribersAboutNewPost(post.ID)
	}

	return post.ID, nil
}

// LikePost records the user's like. Liking twice is a validation error; the
// repository's unique index guarantees that even under concurrency.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) error {
	if err := s.checkLikePreconditions(ctx, postID, userID); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, postID, userID)
}

// DislikePost removes the user's like. Removing an absent like is a
// validation error.
func (s *PostService) DislikePost(ctx context.Context, postID, userID uint) error {
	if err := s.checkLikePreconditions(ctx, postID, userID); err != nil {
		return err
	}
	return s.postRepo.Unlike(ctx, postID, userID)
}

func (s *PostService) checkLikePreconditions(ctx context.Context, postID, userID uint) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("User not found")
	}

	// The post must exist and be visible to the user.
	if _, err := s.postRepo.GetVisible(ctx, postID, &userID); err != nil {
		return err
	}
	return nil
}

// checkTagsExist verifies that every distinct requested tag ID exists.
func (s *PostService) checkTagsExist(ctx context.Context, tagIDs []uint) error {
	seen := make(map[uint]struct{}, len(tagIDs))
	distinct := make([]uint, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	count, err := s.tagRepo.CountByIDs(ctx, distinct)
	if err != nil {
		return err
	}
	if count != int64(len(distinct)) {
		return models.NewValidationError("Invalid tag id")
	}
	return nil
}
