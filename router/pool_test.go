package router

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
)

type pingMsg struct{ replyTo actor.PID }

func echoWorker(replies *sync.Map) func() actor.Behavior {
	return func() actor.Behavior {
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			if p, ok := msg.(pingMsg); ok {
				replies.Store(ctx.Self().String(), true)
				ctx.Tell(p.replyTo, "pong")
			}
			return actor.Same()
		})
	}
}

func TestPoolRoundRobinSpreadsAcrossWorkers(t *testing.T) {
	sys := actor.NewSystem("pool-rr", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	var touched sync.Map
	pool, err := NewPool(sys, "rr-pool", echoWorker(&touched), PoolConfig{Size: 3, Strategy: RoundRobin})
	require.NoError(t, err)

	replyCh := make(chan interface{}, 16)
	collector := actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		replyCh <- msg
		return actor.Same()
	})
	collectorPID, err := sys.Spawn(collector, "rr-collector")
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		sys.Tell(pool.PID, pingMsg{replyTo: collectorPID}, actor.PID{})
	}
	for i := 0; i < 6; i++ {
		select {
		case <-replyCh:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for pong")
		}
	}

	count := 0
	touched.Range(func(_, _ interface{}) bool { count++; return true })
	assert.Equal(t, 3, count, "round robin should have visited all three workers")
}

func TestPoolConsistentHashDeadLettersNonHashKeyedMessages(t *testing.T) {
	sys := actor.NewSystem("pool-hash", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	var touched sync.Map
	pool, err := NewPool(sys, "hash-pool", echoWorker(&touched), PoolConfig{Size: 3, Strategy: ConsistentHash})
	require.NoError(t, err)

	dead := make(chan actor.DeadLetter, 4)
	sys.Events().Subscribe(actor.DeadLetter{}, func(e interface{}) {
		dead <- e.(actor.DeadLetter)
	})

	sys.Tell(pool.PID, "not hash keyed", actor.PID{})

	select {
	case <-dead:
	case <-time.After(time.Second):
		t.Fatal("expected a dead letter for a message without a HashKey")
	}
}
