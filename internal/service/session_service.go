package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"quill/internal/models"
	"quill/internal/repository"

	"github.com/google/uuid"
)

// SessionService manages login sessions. Expired sessions are swept lazily:
// each read takes a single time snapshot, deletes everything expired as of
// that instant and answers using the same instant, so a session can never be
// returned by one query and considered expired by the next.
type SessionService struct {
	repo     repository.SessionRepository
	lifetime time.Duration
	now      func() time.Time
}

func NewSessionService(repo repository.SessionRepository, lifetime time.Duration) *SessionService {
	return &SessionService{
		repo:     repo,
		lifetime: lifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetSessions sweeps expired sessions and returns the user's live ones.
func (s *SessionService) GetSessions(ctx context.Context, userID uint) ([]models.Session, error) {
	now := s.now()
	if _, err := s.repo.DeleteExpired(ctx, now); err != nil {
		return nil, err
	}
	return s.repo.ListActive(ctx, userID, now)
}

// GetSession sweeps expired sessions and returns the session if it is still
// live at the swept instant.
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	now := s.now()
	if _, err := s.repo.DeleteExpired(ctx, now); err != nil {
		return nil, err
	}
	return s.repo.GetActive(ctx, sessionID, now)
}

// CreateSession opens a new session for the user with a fresh refresh token.
func (s *SessionService) CreateSession(ctx context.Context, userID uint, lastIP string) (*models.Session, error) {
	token, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:           uuid.New(),
		UserID:       userID,
		LastIP:       lastIP,
		RefreshToken: &token,
		ExpiresAfter: s.now().Add(s.lifetime),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RefreshSession rotates the session's refresh token and extends its expiry.
// The presented token must match the stored one.
func (s *SessionService) RefreshSession(ctx context.Context, sessionID uuid.UUID, refreshToken string) (*models.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == nil || *session.RefreshToken != refreshToken {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	rotated, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	expiresAfter := s.now().Add(s.lifetime)
	if err := s.repo.UpdateRefresh(ctx, sessionID, rotated, expiresAfter); err != nil {
		return nil, err
	}

	session.RefreshToken = &rotated
	session.ExpiresAfter = expiresAfter
	return session, nil
}

// DeleteSession ends one of the user's sessions.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID uint) error {
	return s.repo.Delete(ctx, sessionID, userID)
}

// ClearSessions ends every session of the user.
func (s *SessionService) ClearSessions(ctx context.Context, userID uint) error {
	return s.repo.DeleteAll(ctx, userID)
}

func newRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
