package service

import (
	"context"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSessionService_GetSession_SweepsWithOneInstant(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	sessionID := uuid.New()

	var sweepNow, readNow time.Time
	repo := &sessionRepoStub{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			sweepNow = now
			return 2, nil
		},
		getActiveFn: func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
			readNow = now
			return &models.Session{ID: id, UserID: 4}, nil
		},
	}
	svc := NewSessionService(repo, 24*time.Hour)
	svc.now = fixedClock(at)

	session, err := svc.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, session.ID)

	// The sweep and the read must judge expiry against the same instant.
	assert.Equal(t, at, sweepNow)
	assert.Equal(t, sweepNow, readNow)
}

func TestSessionService_GetSessions(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	swept := false
	repo := &sessionRepoStub{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			swept = true
			return 0, nil
		},
		listActiveFn: func(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
			assert.True(t, swept, "sweep must happen before listing")
			assert.Equal(t, at, now)
			return []models.Session{{UserID: userID}}, nil
		},
	}
	svc := NewSessionService(repo, 24*time.Hour)
	svc.now = fixedClock(at)

	sessions, err := svc.GetSessions(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSessionService_CreateSession(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	var created *models.Session
	repo := &sessionRepoStub{
		createFn: func(ctx context.Context, session *models.Session) error {
			created = session
			return nil
		},
	}
	svc := NewSessionService(repo, 168*time.Hour)
	svc.now = fixedClock(at)

	session, err := svc.CreateSession(context.Background(), 4, "203.0.113.7")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, uint(4), session.UserID)
	assert.Equal(t, "203.0.113.7", session.LastIP)
	assert.Equal(t, at.Add(168*time.Hour), session.ExpiresAfter)
	require.NotNil(t, session.RefreshToken)
	assert.Len(t, *session.RefreshToken, 64)
}

func TestSessionService_RefreshSession(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	sessionID := uuid.New()
	current := "current-token"

	t.Run("rotates the token and extends expiry", func(t *testing.T) {
		t.Parallel()
		var rotatedTo string
		var extendedTo time.Time
		repo := &sessionRepoStub{
			getActiveFn: func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
				token := current
				return &models.Session{ID: id, RefreshToken: &token, ExpiresAfter: at.Add(time.Hour)}, nil
			},
			updateRefreshFn: func(ctx context.Context, id uuid.UUID, refreshToken string, expiresAfter time.Time) error {
				rotatedTo = refreshToken
				extendedTo = expiresAfter
				return nil
			},
		}
		svc := NewSessionService(repo, 24*time.Hour)
		svc.now = fixedClock(at)

		session, err := svc.RefreshSession(context.Background(), sessionID, current)
		require.NoError(t, err)
		assert.NotEqual(t, current, rotatedTo)
		assert.Equal(t, at.Add(24*time.Hour), extendedTo)
		assert.Equal(t, rotatedTo, *session.RefreshToken)
	})

	t.Run("rejects a mismatched token", func(t *testing.T) {
		t.Parallel()
		repo := &sessionRepoStub{
			getActiveFn: func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
				token := current
				return &models.Session{ID: id, RefreshToken: &token}, nil
			},
		}
		svc := NewSessionService(repo, 24*time.Hour)
		svc.now = fixedClock(at)

		_, err := svc.RefreshSession(context.Background(), sessionID, "stolen-token")
		require.Error(t, err)
		assert.EqualError(t, err, "Invalid refresh token")
	})

	t.Run("expired session reads as missing", func(t *testing.T) {
		t.Parallel()
		repo := &sessionRepoStub{
			getActiveFn: func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
				return nil, models.NewNotFoundError("Session not found")
			},
		}
		svc := NewSessionService(repo, 24*time.Hour)
		svc.now = fixedClock(at)

		_, err := svc.RefreshSession(context.Background(), sessionID, current)
		assertNotFound(t, err, "Session not found")
	})
}
