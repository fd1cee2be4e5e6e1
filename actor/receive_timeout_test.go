package actor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
)

func TestReceiveTimeoutFiresWhenIdle(t *testing.T) {
	sys := actor.NewSystem("receive-timeout", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	fired := make(chan struct{}, 4)
	behave := actor.Setup(func(ctx actor.Context) actor.Behavior {
		ctx.SetReceiveTimeout(30 * time.Millisecond)
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			if _, ok := msg.(actor.ReceiveTimeout); ok {
				fired <- struct{}{}
			}
			return actor.Same()
		})
	})
	_, err := sys.Spawn(behave, "idle-watcher")
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected ReceiveTimeout to fire while idle")
	}
}

func TestReceiveTimeoutResetsOnActivity(t *testing.T) {
	sys := actor.NewSystem("receive-timeout-reset", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	fired := make(chan struct{}, 4)
	pidCh := make(chan actor.PID, 1)
	behave := actor.Setup(func(ctx actor.Context) actor.Behavior {
		ctx.SetReceiveTimeout(80 * time.Millisecond)
		pidCh <- ctx.Self()
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			if _, ok := msg.(actor.ReceiveTimeout); ok {
				fired <- struct{}{}
			}
			return actor.Same()
		})
	})
	_, err := sys.Spawn(behave, "busy-watcher")
	require.NoError(t, err)
	pid := <-pidCh

	// Keep sending real traffic faster than the timeout window; the timer
	// must keep getting pushed back instead of firing.
	for i := 0; i < 5; i++ {
		sys.Tell(pid, "poke", actor.PID{})
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-fired:
		t.Fatal("ReceiveTimeout should not fire while the actor keeps receiving traffic")
	default:
	}
	assert.Len(t, fired, 0)
}
