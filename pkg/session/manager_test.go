package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/triage/internal/classifier"
	"github.com/aretw0/triage/internal/runtime"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
	"github.com/aretw0/triage/pkg/reference"
	"github.com/aretw0/triage/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, store ports.StateStore, opts ...session.Option) *session.Manager {
	t.Helper()
	engine, err := runtime.NewEngine(reference.Tree())
	require.NoError(t, err)
	return session.NewManager(engine, classifier.New(reference.Rules()), store, opts...)
}

func TestManager_GuidedFlow(t *testing.T) {
	store := memory.NewStore()
	m := newManager(t, store)
	ctx := context.Background()

	step, err := m.Start(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "start", step.NodeID)

	_, err = m.Answer(ctx, "s1", "Yes")
	require.NoError(t, err)
	_, err = m.Answer(ctx, "s1", "Yes")
	require.NoError(t, err)

	state, current, err := m.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "chest_head_urgent", state.CurrentNodeID)
	assert.Equal(t, "chest_head_urgent", current.NodeID)

	step, err = m.Answer(ctx, "s1", "Neurology")
	require.NoError(t, err)
	assert.Equal(t, domain.Neurology, step.Recommendation.Specialization)

	state, current, err = m.Current(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.Active())
	assert.True(t, current.Terminal)
}

func TestManager_InvalidChoiceKeepsStoredState(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := context.Background()

	_, err := m.Start(ctx, "s1")
	require.NoError(t, err)

	_, err = m.Answer(ctx, "s1", "Maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)

	state, _, err := m.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentNodeID)
}

func TestManager_UnknownSession(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := context.Background()

	_, err := m.Answer(ctx, "ghost", "Yes")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = m.Current(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, m.Cancel(ctx, "ghost"))
}

func TestManager_ClassifyCancelsGuidedSession(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := context.Background()

	_, err := m.Start(ctx, "s1")
	require.NoError(t, err)
	_, err = m.Answer(ctx, "s1", "Yes")
	require.NoError(t, err)

	rec, err := m.Classify(ctx, "s1", "I have a rash")
	require.NoError(t, err)
	assert.Equal(t, domain.Dermatology, rec.Specialization)

	state, step, err := m.Current(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.Active())
	assert.Equal(t, domain.StatusIdle, state.Status)
	assert.Empty(t, step.Kind)

	_, err = m.Answer(ctx, "s1", "Yes")
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)

	// Without a session id the classifier runs on its own.
	rec, err = m.Classify(ctx, "", "dizzy")
	require.NoError(t, err)
	assert.Equal(t, domain.Neurology, rec.Specialization)
}

func TestManager_SessionIsolation(t *testing.T) {
	m := newManager(t, memory.NewStore())
	ctx := context.Background()

	_, _ = m.Start(ctx, "a")
	_, _ = m.Start(ctx, "b")
	_, err := m.Answer(ctx, "a", "No")
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ctx, "a"))

	b, _, err := m.Current(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "start", b.CurrentNodeID)

	step, err := m.Start(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "start", step.NodeID)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, m.Delete(ctx, "a"))
	ids, _ = m.List(ctx)
	assert.Equal(t, []string{"b"}, ids)
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.State, error) {
	s.enter()
	defer s.leave()
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

func (s *SlowStore) enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
}

func (s *SlowStore) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
}

func TestManager_SerializesSameSession(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	m := newManager(t, store)
	ctx := context.Background()
	_, err := m.Start(ctx, "race")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := m.Current(ctx, "race")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.maxSeen, "loads for the same session must not overlap")
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	ttl   time.Duration
	freed int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.ttl = ttl
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.freed++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	m := newManager(t, memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := m.Start(ctx, "s1")
	require.NoError(t, err)
	_, err = m.Answer(ctx, "s1", "Yes")
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s1"}, locker.keys)
	assert.Equal(t, 5*time.Second, locker.ttl)
	assert.Equal(t, 2, locker.freed)
}

func TestNewID(t *testing.T) {
	a, b := session.NewID(), session.NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

type change struct {
	before, after *domain.State
}

type changeLog struct {
	mu      sync.Mutex
	changes []change
}

func (c *changeLog) record(before, after *domain.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, change{before: before.Clone(), after: after.Clone()})
}

func (c *changeLog) all() []change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]change(nil), c.changes...)
}

func TestManager_OnChangeReportsPersistedTransitions(t *testing.T) {
	m := newManager(t, memory.NewStore())
	log := &changeLog{}
	m.OnChange(log.record)
	ctx := context.Background()

	_, err := m.Start(ctx, "s1")
	require.NoError(t, err)
	_, err = m.Answer(ctx, "s1", "Maybe")
	require.ErrorIs(t, err, domain.ErrInvalidChoice)
	_, err = m.Answer(ctx, "s1", "No")
	require.NoError(t, err)
	_, err = m.Classify(ctx, "s1", "headache")
	require.NoError(t, err)

	changes := log.all()
	require.Len(t, changes, 3, "rejected choices are not reported")

	assert.Nil(t, changes[0].before)
	assert.Equal(t, "start", changes[0].after.CurrentNodeID)

	assert.Equal(t, "start", changes[1].before.CurrentNodeID)
	assert.Equal(t, []string{"start"}, changes[1].before.History)
	assert.Equal(t, []string{"start", "general_wellness"}, changes[1].after.History)

	assert.Equal(t, changes[1].after.Status, changes[2].before.Status)
	assert.False(t, changes[2].after.Active())
}

func TestManager_OnChangeChainsConcurrentMutations(t *testing.T) {
	m := newManager(t, &SlowStore{Store: memory.NewStore()})
	log := &changeLog{}
	m.OnChange(log.record)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := m.Start(ctx, "race")
				assert.NoError(t, err)
				return
			}
			assert.NoError(t, m.Cancel(ctx, "race"))
		}(i)
	}
	wg.Wait()

	changes := log.all()
	require.NotEmpty(t, changes)
	for i := 1; i < len(changes); i++ {
		prev, cur := changes[i-1].after, changes[i].before
		require.NotNil(t, cur, "change %d", i)
		assert.Equal(t, prev.Status, cur.Status, "change %d", i)
		assert.Equal(t, prev.CurrentNodeID, cur.CurrentNodeID, "change %d", i)
	}
}
