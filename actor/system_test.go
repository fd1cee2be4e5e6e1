package actor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lguibr/actorkit/actor"
)

type echoMsg struct {
	text    string
	replyTo actor.PID
}

func echoBehavior() actor.Behavior {
	return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		if e, ok := msg.(echoMsg); ok {
			ctx.Tell(e.replyTo, e.text)
		}
		return actor.Same()
	})
}

func TestSystemSpawnTellAndAskEcho(t *testing.T) {
	sys := actor.NewSystem("echo-sys", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	pid, err := sys.Spawn(echoBehavior(), "echo")
	require.NoError(t, err)

	res, err := sys.Ask(pid, time.Second, func(replyTo actor.PID) interface{} {
		return echoMsg{text: "ping", replyTo: replyTo}
	})
	require.NoError(t, err)
	assert.Equal(t, "ping", res)
}

func TestSystemAskTimesOutWhenNobodyReplies(t *testing.T) {
	sys := actor.NewSystem("ask-timeout", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	silent := actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		return actor.Same()
	})
	pid, err := sys.Spawn(silent, "silent")
	require.NoError(t, err)

	_, err = sys.Ask(pid, 50*time.Millisecond, func(replyTo actor.PID) interface{} {
		return echoMsg{text: "ping", replyTo: replyTo}
	})
	require.Error(t, err)
	var timeoutErr *actor.AskTimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestSpawnDuplicateNameIsRejected(t *testing.T) {
	sys := actor.NewSystem("dup-name", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	_, err := sys.Spawn(echoBehavior(), "only-one")
	require.NoError(t, err)

	_, err = sys.Spawn(echoBehavior(), "only-one")
	var dupErr *actor.DuplicateNameError
	assert.ErrorAs(t, err, &dupErr)
}

func TestTellToUnknownPathIsDeadLettered(t *testing.T) {
	sys := actor.NewSystem("unknown-path", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	dead := make(chan actor.DeadLetter, 1)
	sys.Events().Subscribe(actor.DeadLetter{}, func(e interface{}) {
		dead <- e.(actor.DeadLetter)
	})

	ghost := actor.NewPID(actor.RootPath("unknown-path").Child("nobody"), "stale")
	sys.Tell(ghost, "hello", actor.PID{})

	select {
	case dl := <-dead:
		assert.Equal(t, "hello", dl.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a dead letter")
	}
}

func TestShutdownLeavesNoGoroutinesBehind(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)

	sys := actor.NewSystem("leak-check", actor.DefaultConfig(), nil)
	for i := 0; i < 5; i++ {
		_, err := sys.Spawn(echoBehavior(), "echo-leak")
		if err != nil {
			continue
		}
	}
	sys.Shutdown(2 * time.Second)
}
