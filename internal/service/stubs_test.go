package service

import (
	"context"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/google/uuid"
)

// Function-field stubs for the repository interfaces. Unset fields return
// zero values so each test only wires what it cares about.

type postRepoStub struct {
	createFn     func(ctx context.Context, post *models.Post, tags []models.Tag) error
	getFn        func(ctx context.Context, id uint) (*models.Post, error)
	getVisibleFn func(ctx context.Context, id uint, viewerID *uint) (*models.Post, error)
	listFn       func(ctx context.Context, q repository.ListPostsQuery) ([]*models.Post, int64, error)
	likeFn       func(ctx context.Context, postID, userID uint) error
	unlikeFn     func(ctx context.Context, postID, userID uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if s.createFn != nil {
		return s.createFn(ctx, post, tags)
	}
	return nil
}

func (s *postRepoStub) Get(ctx context.Context, id uint) (*models.Post, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &models.Post{ID: id}, nil
}

func (s *postRepoStub) GetVisible(ctx context.Context, id uint, viewerID *uint) (*models.Post, error) {
	if s.getVisibleFn != nil {
		return s.getVisibleFn(ctx, id, viewerID)
	}
	return &models.Post{ID: id}, nil
}

func (s *postRepoStub) List(ctx context.Context, q repository.ListPostsQuery) ([]*models.Post, int64, error) {
	if s.listFn != nil {
		return s.listFn(ctx, q)
	}
	return nil, 0, nil
}

func (s *postRepoStub) Like(ctx context.Context, postID, userID uint) error {
	if s.likeFn != nil {
		return s.likeFn(ctx, postID, userID)
	}
	return nil
}

func (s *postRepoStub) Unlike(ctx context.Context, postID, userID uint) error {
	if s.unlikeFn != nil {
		return s.unlikeFn(ctx, postID, userID)
	}
	return nil
}

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	existsFn        func(ctx context.Context, id uint) (bool, error)
	createFn        func(ctx context.Context, user *models.User) error
	updateFn        func(ctx context.Context, user *models.User) error
	deleteFn        func(ctx context.Context, id uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.User{ID: id}, nil
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, models.NewNotFoundError("User not found")
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, models.NewNotFoundError("User not found")
}

func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, id)
	}
	return true, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type communityRepoStub struct {
	getByIDFn          func(ctx context.Context, id uint) (*models.Community, error)
	existsFn           func(ctx context.Context, id uint) (bool, error)
	createFn           func(ctx context.Context, community *models.Community) error
	listFn             func(ctx context.Context) ([]models.Community, error)
	addMemberFn        func(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	removeMemberFn     func(ctx context.Context, communityID, userID uint) error
	getMemberFn        func(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error)
	updateMemberRoleFn func(ctx context.Context, communityID, userID uint, role models.CommunityRole) error
	canPostFn          func(ctx context.Context, communityID, userID uint) (bool, error)
	subscriberIDsFn    func(ctx context.Context, communityID uint) ([]uint, error)
}

func (s *communityRepoStub) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.Community{ID: id}, nil
}

func (s *communityRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, id)
	}
	return true, nil
}

func (s *communityRepoStub) Create(ctx context.Context, community *models.Community) error {
	if s.createFn != nil {
		return s.createFn(ctx, community)
	}
	community.ID = 1
	return nil
}

func (s *communityRepoStub) List(ctx context.Context) ([]models.Community, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *communityRepoStub) AddMember(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	if s.addMemberFn != nil {
		return s.addMemberFn(ctx, communityID, userID, role)
	}
	return nil
}

func (s *communityRepoStub) RemoveMember(ctx context.Context, communityID, userID uint) error {
	if s.removeMemberFn != nil {
		return s.removeMemberFn(ctx, communityID, userID)
	}
	return nil
}

func (s *communityRepoStub) GetMember(ctx context.Context, communityID, userID uint) (*models.CommunityMembership, error) {
	if s.getMemberFn != nil {
		return s.getMemberFn(ctx, communityID, userID)
	}
	return &models.CommunityMembership{CommunityID: communityID, UserID: userID}, nil
}

func (s *communityRepoStub) UpdateMemberRole(ctx context.Context, communityID, userID uint, role models.CommunityRole) error {
	if s.updateMemberRoleFn != nil {
		return s.updateMemberRoleFn(ctx, communityID, userID, role)
	}
	return nil
}

func (s *communityRepoStub) CanPost(ctx context.Context, communityID, userID uint) (bool, error) {
	if s.canPostFn != nil {
		return s.canPostFn(ctx, communityID, userID)
	}
	return true, nil
}

func (s *communityRepoStub) SubscriberIDs(ctx context.Context, communityID uint) ([]uint, error) {
	if s.subscriberIDsFn != nil {
		return s.subscriberIDsFn(ctx, communityID)
	}
	return nil, nil
}

type tagRepoStub struct {
	listFn       func(ctx context.Context) ([]models.Tag, error)
	getByNameFn  func(ctx context.Context, name string) (*models.Tag, error)
	createFn     func(ctx context.Context, tag *models.Tag) error
	countByIDsFn func(ctx context.Context, ids []uint) (int64, error)
	getByIDsFn   func(ctx context.Context, ids []uint) ([]models.Tag, error)
}

func (s *tagRepoStub) List(ctx context.Context) ([]models.Tag, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *tagRepoStub) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	if s.getByNameFn != nil {
		return s.getByNameFn(ctx, name)
	}
	return nil, models.NewNotFoundError("Tag not found")
}

func (s *tagRepoStub) Create(ctx context.Context, tag *models.Tag) error {
	if s.createFn != nil {
		return s.createFn(ctx, tag)
	}
	tag.ID = 1
	return nil
}

func (s *tagRepoStub) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	if s.countByIDsFn != nil {
		return s.countByIDsFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

func (s *tagRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if s.getByIDsFn != nil {
		return s.getByIDsFn(ctx, ids)
	}
	tags := make([]models.Tag, len(ids))
	for i, id := range ids {
		tags[i] = models.Tag{ID: id}
	}
	return tags, nil
}

type sessionRepoStub struct {
	createFn        func(ctx context.Context, session *models.Session) error
	getActiveFn     func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error)
	listActiveFn    func(ctx context.Context, userID uint, now time.Time) ([]models.Session, error)
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
	deleteFn        func(ctx context.Context, id uuid.UUID, userID uint) error
	deleteAllFn     func(ctx context.Context, userID uint) error
	updateRefreshFn func(ctx context.Context, id uuid.UUID, refreshToken string, expiresAfter time.Time) error
}

func (s *sessionRepoStub) Create(ctx context.Context, session *models.Session) error {
	if s.createFn != nil {
		return s.createFn(ctx, session)
	}
	return nil
}

func (s *sessionRepoStub) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	if s.getActiveFn != nil {
		return s.getActiveFn(ctx, id, now)
	}
	return &models.Session{ID: id}, nil
}

func (s *sessionRepoStub) ListActive(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
	if s.listActiveFn != nil {
		return s.listActiveFn(ctx, userID, now)
	}
	return nil, nil
}

func (s *sessionRepoStub) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s.deleteExpiredFn != nil {
		return s.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

func (s *sessionRepoStub) Delete(ctx context.Context, id uuid.UUID, userID uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, userID)
	}
	return nil
}

func (s *sessionRepoStub) DeleteAll(ctx context.Context, userID uint) error {
	if s.deleteAllFn != nil {
		return s.deleteAllFn(ctx, userID)
	}
	return nil
}

func (s *sessionRepoStub) UpdateRefresh(ctx context.Context, id uuid.UUID, refreshToken string, expiresAfter time.Time) error {
	if s.updateRefreshFn != nil {
		return s.updateRefreshFn(ctx, id, refreshToken, expiresAfter)
	}
	return nil
}

// notifierStub records notification requests.
type notifierStub struct {
	notified []uint
}

func (s *notifierStub) NotifySubscribersAboutNewPost(postID uint) {
	s.notified = append(s.notified, postID)
}
