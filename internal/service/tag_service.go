package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

type TagService struct {
	tagRepo  repository.TagRepository
	userRepo repository.UserRepository
}

func NewTagService(tagRepo repository.TagRepository, userRepo repository.UserRepository) *TagService {
	return &TagService{tagRepo: tagRepo, userRepo: userRepo}
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

// CreateTag registers a new tag owned by the creator.
func (s *TagService) CreateTag(ctx context.Context, creatorID uint, name string) (*models.Tag, error) {
	exists, err := s.userRepo.Exists(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User not found")
	}

	if err := validation.ValidateTagName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tag := &models.Tag{Name: name, CreatorID: creatorID}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}
