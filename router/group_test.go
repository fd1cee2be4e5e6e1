package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
	"github.com/lguibr/actorkit/receptionist"
)

type groupPing struct{ replyTo actor.PID }

func TestGroupRoutesToRegisteredServiceAndTracksChurn(t *testing.T) {
	sys := actor.NewSystem("group-test", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	recept := receptionist.New(sys)
	key := receptionist.NewServiceKey[groupPing]("workers")

	echo := actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		if p, ok := msg.(groupPing); ok {
			ctx.Tell(p.replyTo, "pong")
		}
		return actor.Same()
	})

	var workers []actor.PID
	for i := 0; i < 2; i++ {
		pid, err := sys.Spawn(echo, "echo-"+string(rune('a'+i)))
		require.NoError(t, err)
		workers = append(workers, pid)
		recept.Register(key, pid)
	}

	grp, err := NewGroup(sys, recept, key, "echo-group", GroupConfig{Strategy: RoundRobin})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond) // allow the initial listing to land

	replyCh := make(chan interface{}, 8)
	collector := actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		replyCh <- msg
		return actor.Same()
	})
	collectorPID, err := sys.Spawn(collector, "group-collector")
	require.NoError(t, err)

	sys.Tell(grp.PID, groupPing{replyTo: collectorPID}, actor.PID{})
	select {
	case <-replyCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for group to route to a registered worker")
	}

	dead := make(chan actor.DeadLetter, 4)
	sys.Events().Subscribe(actor.DeadLetter{}, func(e interface{}) {
		dead <- e.(actor.DeadLetter)
	})

	sys.Stop(workers[0])
	sys.Stop(workers[1])
	time.Sleep(100 * time.Millisecond) // allow deregistration and listing push to land

	sys.Tell(grp.PID, groupPing{replyTo: collectorPID}, actor.PID{})
	select {
	case <-dead:
	case <-time.After(time.Second):
		t.Fatal("expected a dead letter once the group has no registered workers")
	}
	assert.NotNil(t, grp)
}
