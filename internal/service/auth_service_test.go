package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

func TestAuthService_InitialState(t *testing.T) {
	auth := NewAuthService(newTestStore(t))
	state := auth.State()
	assert.Nil(t, state.User)
	assert.False(t, state.IsAuthenticated)
}

func TestAuthService_LoginLogout(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	auth := NewAuthService(store)
	alice := model.User{ID: "1", Username: "alice"}

	require.NoError(t, auth.Login(ctx, alice))
	state := auth.State()
	require.NotNil(t, state.User)
	assert.Equal(t, alice, *state.User)
	assert.True(t, state.IsAuthenticated)

	var saved model.User
	found, err := store.Load(ctx, repository.KeyUser, &saved)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, alice, saved)

	require.NoError(t, auth.Logout(ctx))
	state = auth.State()
	assert.Nil(t, state.User)
	assert.False(t, state.IsAuthenticated)

	found, err = store.Load(ctx, repository.KeyUser, &saved)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAuthService_RestoreAuth(t *testing.T) {
	ctx := context.Background()
	alice := model.User{ID: "1", Username: "alice"}

	tests := []struct {
		name     string
		setup    func(t *testing.T, path string)
		wantAuth bool
		wantUser *model.User
	}{
		{
			name:     "no prior login",
			setup:    func(t *testing.T, path string) {},
			wantAuth: false,
		},
		{
			name: "login before restart",
			setup: func(t *testing.T, path string) {
				store, _ := openStore(t, path)
				require.NoError(t, NewAuthService(store).Login(ctx, alice))
			},
			wantAuth: true,
			wantUser: &alice,
		},
		{
			name: "logout before restart",
			setup: func(t *testing.T, path string) {
				store, _ := openStore(t, path)
				auth := NewAuthService(store)
				require.NoError(t, auth.Login(ctx, alice))
				require.NoError(t, auth.Logout(ctx))
			},
			wantAuth: false,
		},
		{
			name: "null record",
			setup: func(t *testing.T, path string) {
				_, db := openStore(t, path)
				require.NoError(t, db.Create(&model.KVEntry{Key: repository.KeyUser, Value: "null"}).Error)
			},
			wantAuth: false,
		},
		{
			name: "record without username",
			setup: func(t *testing.T, path string) {
				_, db := openStore(t, path)
				require.NoError(t, db.Create(&model.KVEntry{Key: repository.KeyUser, Value: `{"id":"1","username":"  "}`}).Error)
			},
			wantAuth: false,
		},
		{
			name: "corrupt record",
			setup: func(t *testing.T, path string) {
				_, db := openStore(t, path)
				require.NoError(t, db.Create(&model.KVEntry{Key: repository.KeyUser, Value: "{broken"}).Error)
			},
			wantAuth: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := t.TempDir() + "/tasks.db"
			tt.setup(t, path)

			store, _ := openStore(t, path)
			auth := NewAuthService(store)
			auth.RestoreAuth(ctx)

			state := auth.State()
			assert.Equal(t, tt.wantAuth, state.IsAuthenticated)
			assert.Equal(t, tt.wantUser, state.User)
		})
	}
}

func TestAuthService_RestoreSameProcess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	alice := model.User{ID: "1", Username: "alice"}

	require.NoError(t, NewAuthService(store).Login(ctx, alice))

	auth := NewAuthService(store)
	auth.RestoreAuth(ctx)
	user, ok := auth.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, alice, user)
}

func TestAuthService_FailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: newTestStore(t)}
	auth := NewAuthService(store)
	require.NoError(t, auth.Login(ctx, model.User{ID: "1", Username: "alice"}))

	store.fail = true
	assert.ErrorIs(t, auth.Logout(ctx), errWriteFailed)
	assert.True(t, auth.State().IsAuthenticated)
}

func TestAuthService_StateIsCopy(t *testing.T) {
	ctx := context.Background()
	auth := NewAuthService(newTestStore(t))
	require.NoError(t, auth.Login(ctx, model.User{ID: "1", Username: "alice"}))

	state := auth.State()
	state.User.Username = "mallory"

	user, _ := auth.CurrentUser()
	assert.Equal(t, "alice", user.Username)
}
