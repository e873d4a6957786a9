// Copyright (c) 2026 RootLink. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/session"
	"github.com/RuzhenWong/rootlink/internal/storage"
)

// fakeGateway answers login and profile calls from canned values.
type fakeGateway struct {
	loginResult *domain.LoginResult
	loginErr    error
	profile     *domain.UserInfo
	profileErr  error
	// release, when set, blocks CurrentUser until closed.
	release chan struct{}

	logins   atomic.Int32
	profiles atomic.Int32
}

func (g *fakeGateway) Login(_ context.Context, _ domain.Credentials) (*domain.LoginResult, error) {
	g.logins.Add(1)
	return g.loginResult, g.loginErr
}

func (g *fakeGateway) CurrentUser(_ context.Context) (*domain.UserInfo, error) {
	g.profiles.Add(1)
	if g.release != nil {
		<-g.release
	}
	return g.profile, g.profileErr
}

func newManager(t *testing.T, backend storage.Backend, gateway session.Gateway) (*session.Manager, *storage.SessionStore) {
	t.Helper()

	store := storage.NewSessionStore(backend)
	state, err := session.Hydrate(context.Background(), store, nil)
	require.NoError(t, err)
	return session.NewManager(state, gateway), store
}

func assertInvariant(t *testing.T, manager *session.Manager) {
	t.Helper()
	snapshot := manager.Snapshot()
	assert.Equal(t, snapshot.Token != "", snapshot.IsLoggedIn, "logged in exactly when a token is held")
}

/*
TestLogin_EstablishesSession covers the canonical login: token and user ID are
stored, the profile is fetched once and cached.
*/
func TestLogin_EstablishesSession(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{
		loginResult: &domain.LoginResult{Token: "tok1", UserID: "u1"},
		profile:     &domain.UserInfo{RealName: "A"},
	}
	manager, store := newManager(t, storage.NewMemoryBackend(), gateway)
	assertInvariant(t, manager)

	result, err := manager.Login(ctx, domain.Credentials{Phone: "13800138000", Password: "Abc123"})
	require.NoError(t, err)

	assert.Equal(t, "tok1", result.Token)
	assert.Equal(t, "tok1", manager.Token())
	assert.Equal(t, domain.ID("u1"), manager.UserID())
	assert.True(t, manager.IsLoggedIn())
	require.NotNil(t, manager.UserInfo())
	assert.Equal(t, "A", manager.UserInfo().RealName)
	assert.EqualValues(t, 1, gateway.profiles.Load())
	assertInvariant(t, manager)

	token, _ := store.GetToken(ctx)
	userID, _ := store.GetUserID(ctx)
	info, _ := store.GetUserInfo(ctx)
	assert.Equal(t, "tok1", token)
	assert.Equal(t, domain.ID("u1"), userID)
	require.NotNil(t, info)
	assert.Equal(t, "A", info.RealName)
}

func TestLogin_GatewayFailureLeavesSessionUntouched(t *testing.T) {
	want := apperr.Server("wrong password", 200, 40002)
	gateway := &fakeGateway{loginErr: want}
	manager, store := newManager(t, storage.NewMemoryBackend(), gateway)

	_, err := manager.Login(context.Background(), domain.Credentials{})

	assert.Same(t, want, err, "errors are propagated unchanged")
	assert.False(t, manager.IsLoggedIn())
	assert.Zero(t, gateway.profiles.Load())
	token, _ := store.GetToken(context.Background())
	assert.Empty(t, token)
}

func TestLogin_EmptyTokenIsRejected(t *testing.T) {
	gateway := &fakeGateway{loginResult: &domain.LoginResult{UserID: "u1"}}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)

	_, err := manager.Login(context.Background(), domain.Credentials{})

	assert.ErrorIs(t, err, apperr.ErrServer)
	assert.False(t, manager.IsLoggedIn())
	assertInvariant(t, manager)
}

func TestLogin_ProfileFailureKeepsToken(t *testing.T) {
	gateway := &fakeGateway{
		loginResult: &domain.LoginResult{Token: "tok1", UserID: "u1"},
		profileErr:  apperr.Server(constants.NoticeServerError, 500, 0),
	}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)

	result, err := manager.Login(context.Background(), domain.Credentials{})

	assert.ErrorIs(t, err, apperr.ErrServer)
	require.NotNil(t, result)
	assert.Equal(t, "tok1", manager.Token())
	assert.True(t, manager.IsLoggedIn())
	assert.Nil(t, manager.UserInfo())
}

func TestLogout_ClearsEverythingAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	gateway := &fakeGateway{
		loginResult: &domain.LoginResult{Token: "tok1", UserID: "u1"},
		profile:     &domain.UserInfo{RealName: "A"},
	}
	manager, _ := newManager(t, backend, gateway)
	_, err := manager.Login(ctx, domain.Credentials{})
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx))
	first := manager.Snapshot()
	require.NoError(t, manager.Logout(ctx))

	assert.Equal(t, first, manager.Snapshot())
	assert.Equal(t, session.Snapshot{}, first)
	assert.Zero(t, backend.Len())
	assertInvariant(t, manager)
}

func TestHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a persisted session", func(t *testing.T) {
		store := storage.NewSessionStore(storage.NewMemoryBackend())
		require.NoError(t, store.SetToken(ctx, "tok1"))
		require.NoError(t, store.SetUserID(ctx, "u1"))
		require.NoError(t, store.SetUserInfo(ctx, &domain.UserInfo{RealName: "A"}))

		state, err := session.Hydrate(ctx, store, nil)
		require.NoError(t, err)

		assert.True(t, state.IsLoggedIn())
		assert.Equal(t, "tok1", state.Token())
		assert.Equal(t, "A", state.UserInfo().RealName)
	})

	t.Run("empty store is logged out", func(t *testing.T) {
		state, err := session.Hydrate(ctx, storage.NewSessionStore(storage.NewMemoryBackend()), nil)
		require.NoError(t, err)
		assert.False(t, state.IsLoggedIn())
		assert.Nil(t, state.UserInfo())
	})

	t.Run("corrupt profile is discarded", func(t *testing.T) {
		backend := storage.NewMemoryBackend()
		require.NoError(t, backend.Set(ctx, constants.StorageKeyToken, "tok1"))
		require.NoError(t, backend.Set(ctx, constants.StorageKeyUserInfo, "{not json"))

		state, err := session.Hydrate(ctx, storage.NewSessionStore(backend), nil)
		require.NoError(t, err)

		assert.True(t, state.IsLoggedIn())
		assert.Nil(t, state.UserInfo())
		_, found, _ := backend.Get(ctx, constants.StorageKeyUserInfo)
		assert.False(t, found, "corrupt key removed")
	})

	t.Run("backend failure is returned", func(t *testing.T) {
		_, err := session.Hydrate(ctx, storage.NewSessionStore(failingBackend{}), nil)
		assert.Error(t, err)
	})
}

func TestFetchUserInfo_SharesInFlightCall(t *testing.T) {
	gateway := &fakeGateway{
		profile: &domain.UserInfo{RealName: "A"},
		release: make(chan struct{}),
	}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.UserInfo, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := manager.FetchUserInfo(context.Background())
			assert.NoError(t, err)
			results[i] = info
		}()
	}

	// Let every caller join the flight before it lands.
	time.Sleep(50 * time.Millisecond)
	close(gateway.release)
	wg.Wait()

	assert.EqualValues(t, 1, gateway.profiles.Load())
	for _, info := range results {
		require.NotNil(t, info)
		assert.Equal(t, "A", info.RealName)
	}
	results[0].RealName = "mutated"
	assert.Equal(t, "A", results[1].RealName, "each caller gets its own copy")
}

func TestFetchUserInfo_SequentialCallsHitNetwork(t *testing.T) {
	gateway := &fakeGateway{profile: &domain.UserInfo{RealName: "A"}}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)

	for range 3 {
		_, err := manager.FetchUserInfo(context.Background())
		require.NoError(t, err)
	}
	assert.EqualValues(t, 3, gateway.profiles.Load())
}

func TestFetchUserInfo_CallerCancellation(t *testing.T) {
	gateway := &fakeGateway{profile: &domain.UserInfo{RealName: "A"}, release: make(chan struct{})}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)
	defer close(gateway.release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := manager.FetchUserInfo(ctx)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestFetchUserInfo_DroppedAfterLogout(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{
		loginResult: &domain.LoginResult{Token: "tok1", UserID: "u1"},
		profile:     &domain.UserInfo{RealName: "A"},
	}
	manager, _ := newManager(t, storage.NewMemoryBackend(), gateway)
	_, err := manager.Login(ctx, domain.Credentials{})
	require.NoError(t, err)

	gateway.release = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = manager.FetchUserInfo(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, manager.Logout(ctx))
	close(gateway.release)
	<-done

	assert.Nil(t, manager.UserInfo(), "profile of a closed session is not cached")
	assertInvariant(t, manager)
}

/*
TestLogin_DoesNotJoinFetchOfPreviousToken covers a login that lands while a
profile fetch for the restored token is still in flight: the login must make
its own fetch and end with the new profile cached.
*/
func TestLogin_DoesNotJoinFetchOfPreviousToken(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	require.NoError(t, storage.NewSessionStore(backend).SetToken(ctx, "old"))

	gateway := &fakeGateway{
		loginResult: &domain.LoginResult{Token: "new", UserID: "u2"},
		profile:     &domain.UserInfo{RealName: "B"},
		release:     make(chan struct{}),
	}
	manager, _ := newManager(t, backend, gateway)
	require.Equal(t, "old", manager.Token())

	staleDone := make(chan struct{})
	go func() {
		defer close(staleDone)
		_, _ = manager.FetchUserInfo(ctx)
	}()
	require.Eventually(t, func() bool { return gateway.profiles.Load() == 1 }, time.Second, 5*time.Millisecond)

	loginErr := make(chan error, 1)
	go func() {
		_, err := manager.Login(ctx, domain.Credentials{})
		loginErr <- err
	}()
	require.Eventually(t, func() bool { return gateway.profiles.Load() == 2 }, time.Second, 5*time.Millisecond,
		"login starts its own profile fetch")

	close(gateway.release)
	require.NoError(t, <-loginErr)
	<-staleDone

	assert.Equal(t, "new", manager.Token())
	require.NotNil(t, manager.UserInfo())
	assert.Equal(t, "B", manager.UserInfo().RealName)
	assertInvariant(t, manager)
}

// failingBackend fails every operation.
type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackendDown
}
func (failingBackend) Set(context.Context, string, string) error { return errBackendDown }
func (failingBackend) Delete(context.Context, ...string) error   { return errBackendDown }
