package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCause(t *testing.T) {
	root := errors.New("disk full")
	err := Wrapf(root, CodeLocalStorage, "写入集合 %s 失败", "messages")

	assert.ErrorIs(t, err, root)
	assert.Equal(t, CodeLocalStorage, GetCode(err))
	assert.Equal(t, "写入集合 messages 失败: disk full", err.Error())
}

func TestKindPredicates(t *testing.T) {
	local := Wrap(errors.New("io"), CodeLocalStorage, "local")
	remote := Wrap(errors.New("dial tcp"), CodeRemoteUnavailable, "remote")
	missing := New(CodeNotFound, "missing")

	assert.True(t, IsLocalStorageFault(local))
	assert.False(t, IsRemoteUnavailable(local))
	assert.True(t, IsRemoteUnavailable(remote))
	assert.False(t, IsLocalStorageFault(remote))
	assert.True(t, IsNotFound(missing))
	assert.False(t, IsNotFound(nil))
}

func TestPredicateSeesInnerCode(t *testing.T) {
	inner := New(CodeNotFound, "document missing")
	outer := Wrap(inner, CodeRemoteUnavailable, "remote get")

	assert.True(t, IsRemoteUnavailable(outer))
	assert.True(t, IsNotFound(outer))
	assert.True(t, IsNotFound(fmt.Errorf("context: %w", outer)))
}

func TestIsMatchesSentinelByCode(t *testing.T) {
	err := Wrap(errors.New("timeout"), CodeRemoteUnavailable, "remote put")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("plain")))
}
