package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentor_sync/internal/config"
	"mentor_sync/internal/dao/local"
	"mentor_sync/internal/dao/remote"
	"mentor_sync/internal/model"
	"mentor_sync/internal/service/rateguard"
	"mentor_sync/internal/service/request"
	"mentor_sync/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenRecorder 未配置的远端，记录收到的令牌
type tokenRecorder struct {
	remote.Disabled
	token string
}

func (r *tokenRecorder) SetToken(token string) { r.token = token }

func newConfig() *config.Config {
	cfg := new(config.Config)
	cfg.ApplyDefaults()
	return cfg
}

func TestOpenStoreInMemory(t *testing.T) {
	store, err := OpenStore(config.LocalStoreConfig{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))
}

func TestOpenStoreOnDisk(t *testing.T) {
	store, err := OpenStore(config.LocalStoreConfig{Dir: t.TempDir(), Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))
}

func TestSignInLimitsRepeatedFailures(t *testing.T) {
	app := Assemble(newConfig(), local.NewMemoryStore(), remote.Disabled{})
	defer app.Close()
	ctx := context.Background()

	badPassword := errors.New("invalid credentials")
	calls := 0
	fail := func(context.Context) (string, error) {
		calls++
		return "", badPassword
	}

	for i := 0; i < config.DefaultMaxAttempts; i++ {
		assert.ErrorIs(t, app.SignIn(ctx, "Mentee@Example.com", fail), badPassword)
	}
	err := app.SignIn(ctx, " mentee@example.com ", fail)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeTooManyAttempts, errorx.GetCode(err))
	assert.Equal(t, config.DefaultMaxAttempts, calls)
}

func TestSignInStartsSessionAndHandsTokenToRemote(t *testing.T) {
	rec := &tokenRecorder{}
	app := Assemble(newConfig(), local.NewMemoryStore(), rec)
	defer app.Close()
	ctx := context.Background()

	require.Error(t, app.SignIn(ctx, "u1", func(context.Context) (string, error) { return "", errors.New("nope") }))
	require.NoError(t, app.SignIn(ctx, "u1", func(context.Context) (string, error) { return "opaque-token", nil }))

	assert.Equal(t, "opaque-token", rec.token)
	assert.False(t, app.Session.IsExpired())
	_, found, err := app.Session.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, config.DefaultMaxAttempts, app.Guard.RemainingAttempts(rateguard.IdentityKey(loginScope, "u1")))

	require.NoError(t, app.SignOut())
	_, found, err = app.Session.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAssembledFlowOverMemoryRemote(t *testing.T) {
	mem := remote.NewMemoryClient()
	app := Assemble(newConfig(), local.NewMemoryStore(), mem)
	defer app.Close()
	ctx := context.Background()

	mentee := model.Participant{ID: "mentee-1", Name: "Ana"}
	mentor := model.Participant{ID: "mentor-1", Name: "Bo"}

	_, err := app.Chat.SendMessage(ctx, mentee, mentor, "Hello!")
	require.NoError(t, err)
	convs, err := app.Chat.Conversations(ctx, mentor.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Hello!", convs[0].LastMessage)

	req, err := app.Lifecycle.Create(ctx, model.MentorshipRequest{RequesterID: mentee.ID, MentorID: mentor.ID, Note: "please"})
	require.NoError(t, err)
	out, err := app.Lifecycle.Respond(ctx, req.ID, request.Accept, "welcome")
	require.NoError(t, err)
	require.True(t, out.Transitioned)

	select {
	case err := <-out.SideEffect:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("invitation side effect did not finish")
	}

	inbox, err := app.Invitations.Inbox(ctx, mentor.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	listed, err := app.Requests.ListFor(ctx, mentee.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, model.RequestAccepted, listed[0].Status)
}

func TestAssembleTreatsNilRemoteAsDisabled(t *testing.T) {
	var app *App
	require.NotPanics(t, func() {
		app = Assemble(newConfig(), local.NewMemoryStore(), nil)
	})
	defer app.Close()
	assert.False(t, app.Remote.Configured())

	_, err := app.Chat.SendMessage(context.Background(),
		model.Participant{ID: "mentee-1"}, model.Participant{ID: "mentor-1"}, "offline hello")
	require.NoError(t, err)
}

func TestRespondAfterCloseCompletesInvitation(t *testing.T) {
	app := Assemble(newConfig(), local.NewMemoryStore(), remote.Disabled{})
	ctx := context.Background()

	req, err := app.Lifecycle.Create(ctx, model.MentorshipRequest{RequesterID: "mentee-1", MentorID: "mentor-1"})
	require.NoError(t, err)
	app.Close()

	var out request.Outcome
	require.NotPanics(t, func() {
		out, err = app.Lifecycle.Respond(ctx, req.ID, request.Accept, "")
	})
	require.NoError(t, err)
	assert.True(t, out.Transitioned)
	assert.NoError(t, <-out.SideEffect)

	inbox, err := app.Invitations.Inbox(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
