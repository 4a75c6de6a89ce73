package courtroom_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ParthRana1023/AI-Courtroom-sub001/courtroom"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

func TestMirrorPermissiveBeforeFirstFetch(t *testing.T) {
	mirror := courtroom.NewRateLimitMirror(newFakeAPI())
	assert.True(t, mirror.Allow())
	assert.Nil(t, mirror.Window())
}

func TestMirrorAllowsWhileAttemptsRemain(t *testing.T) {
	api := newFakeAPI()
	api.windowResp = &models.RateLimitWindow{RemainingAttempts: 2, MaxAttempts: 5}

	mirror := courtroom.NewRateLimitMirror(api)
	assert.NoError(t, mirror.Refresh(context.Background()))
	assert.True(t, mirror.Allow())
}

func TestMirrorBlocksWhenExhausted(t *testing.T) {
	api := newFakeAPI()
	wait := 30
	api.windowResp = &models.RateLimitWindow{RemainingAttempts: 0, MaxAttempts: 5, SecondsUntilNext: &wait}

	mirror := courtroom.NewRateLimitMirror(api)
	assert.NoError(t, mirror.Refresh(context.Background()))
	assert.False(t, mirror.Allow())

	window := mirror.Window()
	assert.NotNil(t, window)
	assert.Equal(t, 0, window.RemainingAttempts)
	assert.Equal(t, 30, *window.SecondsUntilNext)
}

func TestMirrorCountdownExpiryTriggersRefetch(t *testing.T) {
	api := newFakeAPI()
	wait := 2
	api.windowResp = &models.RateLimitWindow{RemainingAttempts: 0, MaxAttempts: 5, SecondsUntilNext: &wait}

	mirror := courtroom.NewRateLimitMirror(api, courtroom.WithTickInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, mirror.Start(ctx))
	initial := api.callCount("ArgumentRateLimit")

	// after the server opens the window, expiry of the local countdown
	// must pick that up through a refetch
	api.mu.Lock()
	api.windowResp = &models.RateLimitWindow{RemainingAttempts: 5, MaxAttempts: 5}
	api.mu.Unlock()

	assert.Eventually(t, func() bool {
		return api.callCount("ArgumentRateLimit") > initial && mirror.Allow()
	}, time.Second, 5*time.Millisecond)

	mirror.Stop()
}

func TestMirrorNotifierReceivesTicks(t *testing.T) {
	api := newFakeAPI()
	wait := 10
	api.windowResp = &models.RateLimitWindow{RemainingAttempts: 0, MaxAttempts: 5, SecondsUntilNext: &wait}

	events := make(chan string, 64)
	mirror := courtroom.NewRateLimitMirror(api,
		courtroom.WithTickInterval(5*time.Millisecond),
		courtroom.WithMirrorNotifier(courtroom.NotifierFunc(func(event string, data interface{}) {
			select {
			case events <- event:
			default:
			}
		})),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, mirror.Start(ctx))
	defer mirror.Stop()

	select {
	case event := <-events:
		assert.Equal(t, courtroom.EventRateLimitChanged, event)
	case <-time.After(time.Second):
		t.Fatal("expected a rate limit event")
	}
}
