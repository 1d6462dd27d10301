package service

import (
	"context"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

type CommunityService struct {
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
}

type CreateCommunityInput struct {
	CreatorID   uint
	Name        string
	Description string
	IsClosed    bool
}

func NewCommunityService(communityRepo repository.CommunityRepository, userRepo repository.UserRepository) *CommunityService {
	return &CommunityService{communityRepo: communityRepo, userRepo: userRepo}
}

func (s *CommunityService) ListCommunities(ctx context.Context) ([]models.Community, error) {
	return s.communityRepo.List(ctx)
}

func (s *CommunityService) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	return s.communityRepo.GetByID(ctx, id)
}

// CreateCommunity opens a new community. The creator automatically becomes
// its admin.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	exists, err := s.userRepo.Exists(ctx, in.CreatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User not found")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Community name is required")
	}
	if len(name) > 120 {
		return nil, models.NewValidationError("Community name too long (max 120 characters)")
	}

	community := &models.Community{
		Name:        name,
		Description: in.Description,
		IsClosed:    in.IsClosed,
		CreatorID:   in.CreatorID,
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}
	return community, nil
}

// Subscribe adds the user to the community as a subscriber.
func (s *CommunityService) Subscribe(ctx context.Context, communityID, userID uint) error {
	exists, err := s.communityRepo.Exists(ctx, communityID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Community not found")
	}

	userExists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !userExists {
		return models.NewNotFoundError("User not found")
	}

	return s.communityRepo.AddMember(ctx, communityID, userID, models.CommunityRoleSubscriber)
}

// Unsubscribe removes the user from the community. The creator keeps their
// implicit relation to the community either way.
func (s *CommunityService) Unsubscribe(ctx context.Context, communityID, userID uint) error {
	exists, err := s.communityRepo.Exists(ctx, communityID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Community not found")
	}

	return s.communityRepo.RemoveMember(ctx, communityID, userID)
}

// PromoteAdmin grants the admin role to a member. Only the community creator
// may promote.
func (s *CommunityService) PromoteAdmin(ctx context.Context, communityID, callerID, memberID uint) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != callerID {
		return models.NewUnauthorizedError("Only the community creator can promote admins")
	}

	if _, err := s.communityRepo.GetMember(ctx, communityID, memberID); err != nil {
		if models.IsNotFound(err) {
			return models.NewValidationError("User is not a member of this community")
		}
		return err
	}

	return s.communityRepo.UpdateMemberRole(ctx, communityID, memberID, models.CommunityRoleAdmin)
}
