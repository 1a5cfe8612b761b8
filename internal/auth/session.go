package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kindling-app/kindling/internal/db"
)

// SessionStore persists login sessions. A JWT is only honored while its
// session row exists and has not expired, so logout is immediate.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore creates a store bound to the given DB handle.
func NewSessionStore(database *gorm.DB) *SessionStore {
	return &SessionStore{db: database}
}

// Create opens a session for a user.
func (s *SessionStore) Create(ctx context.Context, userID, token string, ttl time.Duration) (*db.Session, error) {
	session := db.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// SetToken writes the signed token on a freshly created session.
func (s *SessionStore) SetToken(ctx context.Context, sessionID, token string) error {
	return s.db.WithContext(ctx).
		Model(&db.Session{}).
		Where("id = ?", sessionID).
		Update("token", token).Error
}

// Validate returns the session when it exists, carries the given token, and
// has not expired. Expired sessions are deleted on sight.
func (s *SessionStore) Validate(ctx context.Context, sessionID, token string) (*db.Session, error) {
	var session db.Session
	err := s.db.WithContext(ctx).
		Where("id = ? AND token = ?", sessionID, token).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if session.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.db.WithContext(ctx).Delete(&db.Session{}, "id = ?", session.ID).Error
		return nil, nil
	}
	return &session, nil
}

// Delete removes a session (logout).
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&db.Session{}, "id = ?", sessionID).Error
}
