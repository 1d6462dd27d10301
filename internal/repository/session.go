package repository

import (
	"context"
	"errors"
	"time"

	"quill/internal/models"
	"quill/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository defines data access methods for refresh sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// GetActive loads a session that has not expired as of now.
	GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error)
	// ListActive returns the user's sessions that survive the given instant.
	ListActive(ctx context.Context, userID uint, now time.Time) ([]models.Session, error)
	// DeleteExpired removes every session expired as of now, for all users.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// Delete removes one of the user's sessions by ID.
	Delete(ctx context.Context, id uuid.UUID, userID uint) error
	// DeleteAll removes every session belonging to the user.
	DeleteAll(ctx context.Context, userID uint) error
	UpdateRefresh(ctx context.Context, id uuid.UUID, refreshToken string, expiresAfter time.Time) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("id = ? AND expires_after > ?", id, now).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Session not found")
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListActive(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_after > ?", userID, now).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_after <= ?", now).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		observability.SessionsSwept.Add(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Session not found")
	}
	return nil
}

func (r *sessionRepository) DeleteAll(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Session{}).Error
}

func (r *sessionRepository) UpdateRefresh(ctx context.Context, id uuid.UUID, refreshToken string, expiresAfter time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"refresh_token": refreshToken,
			"expires_after": expiresAfter,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Session not found")
	}
	return nil
}
