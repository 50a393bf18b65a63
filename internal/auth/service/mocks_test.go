package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/toggle-task/internal/auth/domain"
	userdomain "github.com/AlibekovAA/toggle-task/internal/user/domain"
	userrepo "github.com/AlibekovAA/toggle-task/internal/user/repository"
)

// memoryUserRepo behaves like the real stores, including username uniqueness.
type memoryUserRepo struct {
	mu         sync.Mutex
	users      map[string]userdomain.User
	createFunc func(ctx context.Context, user userdomain.User) error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]userdomain.User)}
}

func (m *memoryUserRepo) Create(ctx context.Context, user userdomain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return userrepo.ErrUsernameAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *memoryUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return userdomain.User{}, userrepo.ErrUserNotFound
}

func (m *memoryUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type mockRevokedRepo struct {
	mu          sync.Mutex
	revoked     map[string]authdomain.RevokedSession
	isRevokedFn func(ctx context.Context, jti string, now time.Time) (bool, error)
}

func newMockRevokedRepo() *mockRevokedRepo {
	return &mockRevokedRepo{revoked: make(map[string]authdomain.RevokedSession)}
}

func (m *mockRevokedRepo) Revoke(ctx context.Context, s authdomain.RevokedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[s.JTI] = s
	return nil
}

func (m *mockRevokedRepo) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	if m.isRevokedFn != nil {
		return m.isRevokedFn(ctx, jti, now)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.revoked[jti]
	return ok && s.ExpiresAt.After(now), nil
}

func (m *mockRevokedRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash != "hashed_"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.n), nil
}
