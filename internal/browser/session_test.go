package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCombineContext_SecondaryCancelPropagates(t *testing.T) {
	primary := context.Background()
	secondary, cancelSecondary := context.WithCancel(context.Background())

	combined, cancel := combineContext(primary, secondary)
	defer cancel()

	cancelSecondary()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context was not canceled")
	}
}

func TestCombineContext_CancelReleasesGoroutine(t *testing.T) {
	combined, cancel := combineContext(context.Background(), context.Background())
	cancel()
	<-combined.Done()
	// goleak in TestMain verifies the watcher goroutine exits.
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	closes := 0
	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(ctx, cancel, config.BrowserConfig{}, zap.NewNop(), func() { closes++ })

	require.NoError(t, sess.Close(context.Background()))
	require.NoError(t, sess.Close(context.Background()))
	assert.Equal(t, 1, closes)

	select {
	case <-ctx.Done():
	default:
		t.Fatal("session context should be canceled after Close")
	}
}

func TestNewSession_Defaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := newSession(ctx, cancel, config.BrowserConfig{}, zap.NewNop(), nil)
	defer sess.Close(context.Background())

	assert.NotEmpty(t, sess.id)
	assert.Equal(t, 90*time.Second, sess.navigationTimeout)
	assert.Equal(t, time.Second, sess.pollInterval)
}
