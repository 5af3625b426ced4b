package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doacao-platform/internal/models"
	"doacao-platform/internal/store"
)

// manualScheduler holds callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

// fire runs the i-th scheduled callback.
func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	f := s.pending[i]
	s.mu.Unlock()
	f()
}

func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	fs := append([]func(){}, s.pending...)
	s.mu.Unlock()
	for _, f := range fs {
		f()
	}
}

func newTestManager(t *testing.T) (*Manager, *manualScheduler, *store.Memory) {
	t.Helper()
	sched := &manualScheduler{}
	st := store.NewMemory()
	m := New(st, zap.NewNop(), Options{
		LoginDelay:    time.Second,
		RegisterDelay: 1500 * time.Millisecond,
		Scheduler:     sched,
	})
	return m, sched, st
}

func storedUser(t *testing.T, st store.Store) (models.User, bool) {
	t.Helper()
	var u models.User
	err := store.GetJSON(context.Background(), st, store.KeyUser, &u)
	if errors.Is(err, store.ErrNotFound) {
		return u, false
	}
	require.NoError(t, err)
	return u, true
}

func TestLoginResolvesAfterDelay(t *testing.T) {
	m, sched, st := newTestManager(t)

	task := m.Login("maria@x.com")

	_, err := task.Result()
	assert.ErrorIs(t, err, ErrPending)
	_, ok := m.CurrentUser()
	assert.False(t, ok)
	require.Len(t, sched.delays, 1)
	assert.Equal(t, time.Second, sched.delays[0])

	sched.fire(0)

	u, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, models.RoleDonor, u.Role)
	assert.Equal(t, "maria@x.com", u.Email)
	assert.Equal(t, "maria", u.Name)
	assert.Equal(t, loginStats, u.Stats)
	assert.Contains(t, u.Avatar, "maria%40x.com")
	_, err = uuid.Parse(u.ID)
	assert.NoError(t, err, "id should be a UUID")

	cur, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u.ID, cur.ID)

	persisted, ok := storedUser(t, st)
	require.True(t, ok)
	assert.Equal(t, u.ID, persisted.ID)
}

func TestConcurrentLoginsLastResolvedWins(t *testing.T) {
	m, sched, _ := newTestManager(t)

	maria := m.Login("maria@x.com")
	joao := m.Login("joao@y.com")

	// Resolve out of submission order: joao first, maria last.
	sched.fire(1)
	sched.fire(0)

	mu, err := maria.Result()
	require.NoError(t, err)
	ju, err := joao.Result()
	require.NoError(t, err)
	assert.NotEqual(t, mu.ID, ju.ID)

	cur, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "maria@x.com", cur.Email, "session belongs to the login that resolved last")

	// And in submission order the later call wins.
	m2, sched2, _ := newTestManager(t)
	m2.Login("maria@x.com")
	m2.Login("joao@y.com")
	sched2.fire(0)
	sched2.fire(1)
	cur, _ = m2.CurrentUser()
	assert.Equal(t, "joao@y.com", cur.Email)
}

func TestLoginRejectsMalformedEmail(t *testing.T) {
	m, sched, _ := newTestManager(t)

	for _, email := range []string{"", "   ", "maria", "@x.com", "maria@", "ma ria@x.com"} {
		task := m.Login(email)
		_, err := task.Result()
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}
	assert.Empty(t, sched.pending)
}

func TestRegister(t *testing.T) {
	m, sched, _ := newTestManager(t)

	task := m.Register(RegisterInput{
		Name:  "Padaria Boa",
		Email: "contato@padaria.com",
		Role:  models.RoleBusiness,
		City:  "Recife",
		Business: &models.BusinessData{
			BusinessName: "Padaria Boa LTDA",
			TaxID:        "12.345.678/0001-99",
		},
	})
	assert.Equal(t, 1500*time.Millisecond, sched.delays[0])
	sched.fire(0)

	u, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, models.RoleBusiness, u.Role)
	assert.Equal(t, "Padaria Boa LTDA", u.BusinessName)
	assert.Equal(t, "Recife", u.City)
	assert.Equal(t, models.UserStats{}, u.Stats)
	assert.NoError(t, u.Validate())
}

func TestRegisterDropsBusinessFieldsForOtherRoles(t *testing.T) {
	m, sched, _ := newTestManager(t)

	task := m.Register(RegisterInput{
		Name:     "Ana",
		Email:    "ana@x.com",
		Role:     models.RoleBeneficiary,
		Business: &models.BusinessData{BusinessName: "nope"},
	})
	sched.fire(0)

	u, err := task.Result()
	require.NoError(t, err)
	assert.Empty(t, u.BusinessName)
}

func TestRegisterConsumesPendingRole(t *testing.T) {
	m, sched, st := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetPendingRole(ctx, models.RoleBeneficiary))

	task := m.Register(RegisterInput{Name: "Ana", Email: "ana@x.com"})
	sched.fire(0)
	u, err := task.Result()
	require.NoError(t, err)
	assert.Equal(t, models.RoleBeneficiary, u.Role)

	_, err = st.Get(ctx, store.KeyPendingRole)
	assert.ErrorIs(t, err, store.ErrNotFound, "pending role is consumed once")

	task = m.Register(RegisterInput{Name: "Bia", Email: "bia@x.com"})
	sched.fire(1)
	u, err = task.Result()
	require.NoError(t, err)
	assert.Equal(t, models.RoleDonor, u.Role)
}

func TestRegisterValidation(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Register(RegisterInput{Name: "", Email: "a@b.c"}).Result()
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = m.Register(RegisterInput{Name: "A", Email: "nope"}).Result()
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = m.Register(RegisterInput{Name: "A", Email: "a@b.c", Role: "superuser"}).Result()
	assert.ErrorIs(t, err, models.ErrInvalidRole)

	assert.ErrorIs(t, m.SetPendingRole(context.Background(), "root"), models.ErrInvalidRole)
}

func TestUpdateRoleWithoutSessionIsNoop(t *testing.T) {
	m, _, st := newTestManager(t)

	_, ok := m.UpdateRole(models.RoleAdmin, nil)
	assert.False(t, ok)

	_, ok = m.CurrentUser()
	assert.False(t, ok)
	_, ok = storedUser(t, st)
	assert.False(t, ok)
}

func TestUpdateRole(t *testing.T) {
	m, sched, st := newTestManager(t)
	m.Login("maria@x.com")
	sched.fire(0)

	u, ok := m.UpdateRole(models.RoleBusiness, &models.BusinessData{BusinessName: "Maria Doces", Expertise: "Confeitaria"})
	require.True(t, ok)
	assert.Equal(t, models.RoleBusiness, u.Role)
	assert.Equal(t, "Maria Doces", u.BusinessName)

	persisted, ok := storedUser(t, st)
	require.True(t, ok)
	assert.Equal(t, "Maria Doces", persisted.BusinessName)

	u, ok = m.UpdateRole(models.RoleDonor, nil)
	require.True(t, ok)
	assert.Empty(t, u.BusinessName, "business fields only exist on business users")

	_, ok = m.UpdateRole("pirate", nil)
	assert.False(t, ok)
	cur, _ := m.CurrentUser()
	assert.Equal(t, models.RoleDonor, cur.Role)
}

func TestLogout(t *testing.T) {
	m, sched, st := newTestManager(t)
	m.Login("maria@x.com")
	sched.fire(0)

	m.Logout()

	_, ok := m.CurrentUser()
	assert.False(t, ok)
	_, ok = storedUser(t, st)
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	saved := models.User{ID: "u-1", Name: "Maria", Email: "maria@x.com", Role: models.RoleAdmin}
	require.NoError(t, store.PutJSON(ctx, st, store.KeyUser, saved))

	m := New(st, zap.NewNop(), Options{Scheduler: &manualScheduler{}})
	m.Restore(ctx)

	u, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, saved, u)
}

func TestRestoreFailsClosed(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]byte{
		"corrupt json":      []byte("{\"id\":"),
		"unknown role":      []byte(`{"id":"u-1","email":"a@b.c","role":"wizard"}`),
		"missing id":        []byte(`{"email":"a@b.c","role":"donor"}`),
		"business on donor": []byte(`{"id":"u-1","email":"a@b.c","role":"donor","tax_id":"1"}`),
		"wrong type":        []byte(`[1,2,3]`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			st := store.NewMemory()
			require.NoError(t, st.Put(ctx, store.KeyUser, raw))

			m := New(st, zap.NewNop(), Options{Scheduler: &manualScheduler{}})
			m.Restore(ctx)

			_, ok := m.CurrentUser()
			assert.False(t, ok)
			_, err := st.Get(ctx, store.KeyUser)
			assert.ErrorIs(t, err, store.ErrNotFound, "invalid record is discarded")
		})
	}
}

func TestRestoreWithoutRecord(t *testing.T) {
	m := New(store.NewMemory(), zap.NewNop(), Options{})
	m.Restore(context.Background())
	_, ok := m.CurrentUser()
	assert.False(t, ok)
}

func TestCallbacksAfterCloseAreNoops(t *testing.T) {
	m, sched, st := newTestManager(t)

	login := m.Login("maria@x.com")
	register := m.Register(RegisterInput{Name: "Ana", Email: "ana@x.com"})
	m.Close()
	sched.fireAll()

	_, err := login.Result()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = register.Result()
	assert.ErrorIs(t, err, ErrClosed)

	_, ok := m.CurrentUser()
	assert.False(t, ok)
	_, ok = storedUser(t, st)
	assert.False(t, ok)
}

func TestRecordStats(t *testing.T) {
	m, sched, _ := newTestManager(t)

	// no session: nothing happens
	m.RecordDonation("someone", 10)
	m.RecordRequestCreated()

	task := m.Register(RegisterInput{Name: "Ana", Email: "ana@x.com"})
	sched.fire(0)
	ana, err := task.Result()
	require.NoError(t, err)

	m.RecordDonation(ana.ID, 25.5)
	m.RecordDonation(ana.ID, 4.5)
	m.RecordDonation("previous-user", 100)
	m.RecordRequestCreated()

	u, _ := m.CurrentUser()
	assert.Equal(t, 2, u.Stats.Donations)
	assert.InDelta(t, 30.0, u.Stats.TotalDonated, 1e-9)
	assert.Equal(t, 1, u.Stats.RequestsCreated)
}

func TestDonationStatsFollowTheDonor(t *testing.T) {
	m, sched, _ := newTestManager(t)

	first := m.Login("maria@x.com")
	sched.fire(0)
	maria, err := first.Result()
	require.NoError(t, err)

	second := m.Login("joao@x.com")
	sched.fire(1)
	joao, err := second.Result()
	require.NoError(t, err)

	// maria's donation finished after joao took over the session
	m.RecordDonation(maria.ID, 50)

	u, _ := m.CurrentUser()
	assert.Equal(t, joao.ID, u.ID)
	assert.Equal(t, loginStats, u.Stats)
}

func TestPendingRoleSurvivesClosedRegistration(t *testing.T) {
	m, sched, st := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetPendingRole(ctx, models.RoleBusiness))

	task := m.Register(RegisterInput{Name: "Ana", Email: "ana@x.com"})
	m.Close()
	sched.fire(0)

	_, err := task.Result()
	assert.ErrorIs(t, err, ErrClosed)

	data, err := st.Get(ctx, store.KeyPendingRole)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleBusiness), string(data))
}

// flakyStore fails every read until healed.
type flakyStore struct {
	*store.Memory
	mu     sync.Mutex
	broken bool
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	broken := s.broken
	s.mu.Unlock()
	if broken {
		return nil, errors.New("dial tcp 127.0.0.1:5432: connection refused")
	}
	return s.Memory.Get(ctx, key)
}

func (s *flakyStore) heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = false
}

func TestRestoreKeepsRecordWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{Memory: store.NewMemory(), broken: true}
	saved := models.User{ID: "u-1", Name: "Maria", Email: "maria@x.com", Role: models.RoleDonor}
	require.NoError(t, store.PutJSON(ctx, st, store.KeyUser, saved))

	m := New(st, zap.NewNop(), Options{Scheduler: &manualScheduler{}})
	m.Restore(ctx)

	_, ok := m.CurrentUser()
	assert.False(t, ok)

	st.heal()
	u, ok := storedUser(t, st)
	require.True(t, ok, "record survives a failed read")
	assert.Equal(t, saved, u)

	again := New(st, zap.NewNop(), Options{Scheduler: &manualScheduler{}})
	again.Restore(ctx)
	u, ok = again.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u-1", u.ID)
}

func TestTaskWait(t *testing.T) {
	m := New(store.NewMemory(), zap.NewNop(), Options{LoginDelay: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := m.Login("maria@x.com").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "maria@x.com", u.Email)

	pending := newTask[int]()
	short, cancelShort := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelShort()
	_, err = pending.Wait(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pending.resolve(1, nil)
	pending.resolve(2, nil)
	v, err := pending.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v, "a task resolves once")
}
