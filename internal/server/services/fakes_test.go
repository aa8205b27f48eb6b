package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/dbx"
	"github.com/dmitrijs2005/researchdt/internal/server/cache"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/notify"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/users"
	"github.com/redis/go-redis/v9"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newRedisStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewRedisStore(rdb, "test:"), mr
}

func nowUTC() time.Time { return time.Now().UTC() }

// memDB is an in-memory stand-in for the users and profiles tables.
// failOn names a repository method that should fail.
type memDB struct {
	mu         sync.Mutex
	users      map[string]*models.User
	info       map[string]models.Info
	settings   map[string]models.Settings
	systemInfo map[string]models.SystemInfo
	activity   map[string]models.Activity
	statistic  map[string]models.Statistic
	failOn     string
	failErr    error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]*models.User{},
		info:       map[string]models.Info{},
		settings:   map[string]models.Settings{},
		systemInfo: map[string]models.SystemInfo{},
		activity:   map[string]models.Activity{},
		statistic:  map[string]models.Statistic{},
	}
}

func (m *memDB) fail(op string) error {
	if m.failOn == op {
		if m.failErr != nil {
			return m.failErr
		}
		return errors.New("db error: " + op)
	}
	return nil
}

type fakeManager struct{ m *memDB }

func (f *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeManager) Users(dbx.DBTX) users.Repository              { return &memUsers{f.m} }
func (f *fakeManager) Profiles(dbx.DBTX) profiles.Repository        { return &memProfiles{f.m} }

type memUsers struct{ m *memDB }

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Roles = models.NewRoleSet()
	for r := range u.Roles {
		c.Roles.Add(r)
	}
	return &c
}

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("Create"); err != nil {
		return err
	}
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return common.ErrorAlreadyExists
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := cloneUser(u)
	stored.Roles = models.NewRoleSet()
	r.m.users[u.ID] = stored
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("EmailTaken"); err != nil {
		return false, err
	}
	for id, u := range r.m.users {
		if id != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) UpdateEmail(_ context.Context, id, email string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("UpdateEmail"); err != nil {
		return err
	}
	stored, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Email = email
	return nil
}

func (r *memUsers) SetPassword(_ context.Context, id, hash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("SetPassword"); err != nil {
		return err
	}
	stored, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = hash
	return nil
}

func (r *memUsers) AddRole(_ context.Context, id string, role models.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddRole"); err != nil {
		return err
	}
	if u, ok := r.m.users[id]; ok {
		u.Roles.Add(role)
	}
	return nil
}

func (r *memUsers) RemoveRole(_ context.Context, id string, role models.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("RemoveRole"); err != nil {
		return err
	}
	if u, ok := r.m.users[id]; ok {
		u.Roles.Remove(role)
	}
	return nil
}

type memProfiles struct{ m *memDB }

func (r *memProfiles) CreateInfo(_ context.Context, v *models.Info) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateInfo"); err != nil {
		return err
	}
	r.m.info[v.UserID] = *v
	return nil
}

func (r *memProfiles) CreateSettings(_ context.Context, v *models.Settings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateSettings"); err != nil {
		return err
	}
	r.m.settings[v.UserID] = *v
	return nil
}

func (r *memProfiles) CreateSystemInfo(_ context.Context, v *models.SystemInfo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateSystemInfo"); err != nil {
		return err
	}
	r.m.systemInfo[v.UserID] = *v
	return nil
}

func (r *memProfiles) CreateActivity(_ context.Context, v *models.Activity) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateActivity"); err != nil {
		return err
	}
	r.m.activity[v.UserID] = *v
	return nil
}

func (r *memProfiles) CreateStatistic(_ context.Context, v *models.Statistic) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateStatistic"); err != nil {
		return err
	}
	r.m.statistic[v.UserID] = *v
	return nil
}

func (r *memProfiles) GetInfo(_ context.Context, id string) (*models.Info, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.info[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r *memProfiles) GetSettings(_ context.Context, id string) (*models.Settings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.settings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r *memProfiles) GetSystemInfo(_ context.Context, id string) (*models.SystemInfo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.systemInfo[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r *memProfiles) GetActivity(_ context.Context, id string) (*models.Activity, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.activity[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &v, nil
}

func (r *memProfiles) UpdateInfo(_ context.Context, v *models.Info) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("UpdateInfo"); err != nil {
		return err
	}
	r.m.info[v.UserID] = *v
	return nil
}

func (r *memProfiles) UpdateSettings(_ context.Context, v *models.Settings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("UpdateSettings"); err != nil {
		return err
	}
	r.m.settings[v.UserID] = *v
	return nil
}

func (r *memProfiles) UpdateSystemInfo(_ context.Context, v *models.SystemInfo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("UpdateSystemInfo"); err != nil {
		return err
	}
	r.m.systemInfo[v.UserID] = *v
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

type sentMessage struct {
	to      string
	payload notify.Payload
}

func (n *fakeNotifier) Notify(_ context.Context, to string, p notify.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{to: to, payload: p})
	return nil
}

func (n *fakeNotifier) last() sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}
