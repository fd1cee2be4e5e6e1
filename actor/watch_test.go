package actor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
)

func TestWatchDeliversTerminatedOnStop(t *testing.T) {
	sys := actor.NewSystem("watch-basic", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	target, err := sys.Spawn(echoBehavior(), "target")
	require.NoError(t, err)

	terminatedCh := make(chan actor.PID, 1)
	watcher := actor.Setup(func(ctx actor.Context) actor.Behavior {
		ctx.Watch(target)
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			return actor.Same()
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			if ts, ok := sig.(actor.TerminatedSignal); ok {
				terminatedCh <- ts.Who
				return actor.Same()
			}
			return actor.Unhandled()
		})
	})
	_, err = sys.Spawn(watcher, "watcher")
	require.NoError(t, err)

	sys.Stop(target)

	select {
	case who := <-terminatedCh:
		assert.True(t, who.Equal(target))
	case <-time.After(time.Second):
		t.Fatal("expected a TerminatedSignal for the watched target")
	}
}

func TestUnhandledTerminatedTriggersDeathPactViolation(t *testing.T) {
	sys := actor.NewSystem("death-pact", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	target, err := sys.Spawn(echoBehavior(), "pact-target")
	require.NoError(t, err)

	dead := make(chan actor.DeadLetter, 4)
	sys.Events().Subscribe(actor.DeadLetter{}, func(e interface{}) {
		dead <- e.(actor.DeadLetter)
	})

	// A watcher with no OnSignal handler at all: any Terminated is
	// unhandled, which raises the death-pact violation; under the Resume
	// strategy given below the watcher must survive it and keep handling
	// messages.
	watcher := actor.Setup(func(ctx actor.Context) actor.Behavior {
		ctx.Watch(target)
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			return actor.Same()
		})
	})
	watcherPID, err := sys.Spawn(watcher, "pact-watcher", actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	require.NoError(t, err)

	sys.Stop(target)
	time.Sleep(50 * time.Millisecond)

	sys.Tell(watcherPID, "still alive?", actor.PID{})
	select {
	case <-dead:
		t.Fatal("Resume should keep the watcher alive after the death-pact violation, not stop it")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnwatchStopsFurtherTerminatedNotifications(t *testing.T) {
	sys := actor.NewSystem("unwatch", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	target, err := sys.Spawn(echoBehavior(), "unwatch-target")
	require.NoError(t, err)

	terminatedCh := make(chan struct{}, 1)
	watcher := actor.Setup(func(ctx actor.Context) actor.Behavior {
		ctx.Watch(target)
		ctx.Unwatch(target)
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			return actor.Same()
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			if _, ok := sig.(actor.TerminatedSignal); ok {
				terminatedCh <- struct{}{}
			}
			return actor.Same()
		})
	})
	_, err = sys.Spawn(watcher, "unwatcher")
	require.NoError(t, err)

	sys.Stop(target)

	select {
	case <-terminatedCh:
		t.Fatal("an unwatched target should not deliver TerminatedSignal")
	case <-time.After(150 * time.Millisecond):
	}
}
