package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/storage"
)

// Manager holds the auth session (access token + profile) and mirrors it to
// durable storage under fixed keys. The token is replaced in place when the
// gateway refreshes it.
type Manager struct {
	mu      sync.RWMutex
	storage storage.Store
	logger  *zap.Logger
	token   string
	user    models.Profile
	hasUser bool
}

func NewManager(ctx context.Context, st storage.Store, logger *zap.Logger) *Manager {
	m := &Manager{storage: st, logger: logger}
	m.load(ctx)
	return m
}

func (m *Manager) load(ctx context.Context) {
	if data, err := m.storage.Get(ctx, storage.KeySessionToken); err == nil {
		m.token = string(data)
	}
	if data, err := m.storage.Get(ctx, storage.KeySessionUser); err == nil {
		var user models.Profile
		if err := json.Unmarshal(data, &user); err != nil {
			m.logger.Warn("corrupt session profile purged", zap.Error(err))
			_ = m.storage.Delete(ctx, storage.KeySessionUser)
			return
		}
		m.user = user
		m.hasUser = true
	}
}

// Token returns the current access token, empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SetToken installs and persists a new access token.
func (m *Manager) SetToken(ctx context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return m.storage.Set(ctx, storage.KeySessionToken, []byte(token))
}

// User returns the stored profile and whether one is present.
func (m *Manager) User() (models.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.hasUser
}

// SetUser installs and persists the signed-in profile.
func (m *Manager) SetUser(ctx context.Context, user models.Profile) error {
	m.mu.Lock()
	m.user = user
	m.hasUser = true
	m.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.storage.Set(ctx, storage.KeySessionUser, data)
}

// Purge drops the session from memory and storage, used when refresh fails.
func (m *Manager) Purge(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = models.Profile{}
	m.hasUser = false
	m.mu.Unlock()

	if err := m.storage.Delete(ctx, storage.KeySessionToken); err != nil {
		return err
	}
	return m.storage.Delete(ctx, storage.KeySessionUser)
}

// ExpiresWithin reports whether the access token's exp claim falls inside
// the given window. Signature verification belongs to the backend; only the
// claim payload is read here. Tokens without a readable exp claim are never
// reported as expiring, leaving recovery to the reactive 401 path.
func (m *Manager) ExpiresWithin(window time.Duration) bool {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Until(time.Unix(int64(exp), 0)) < window
}
