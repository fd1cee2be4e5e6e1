package receptionist

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
)

type Work struct{}

func workerBehavior() actor.Behavior {
	return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		return actor.Same()
	})
}

func TestReceptionistRegisterFindAndTerminationCleanup(t *testing.T) {
	sys := actor.NewSystem("recept-test", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	r := New(sys)
	key := NewServiceKey[Work]("pool")

	var workers []actor.PID
	for i := 0; i < 3; i++ {
		pid, err := sys.Spawn(workerBehavior(), "worker-"+string(rune('a'+i)))
		require.NoError(t, err)
		workers = append(workers, pid)
		r.Register(key, pid)
	}

	ch := make(chan Listing, 8)
	_, err := r.SubscribeFunc(key, func(l Listing) { ch <- l })
	require.NoError(t, err)

	var last Listing
	select {
	case last = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial listing")
	}
	assert.Len(t, last.Refs, 3)

	listing, err := r.Find(key, time.Second)
	require.NoError(t, err)
	assert.Len(t, listing.Refs, 3)
	for _, w := range workers {
		assert.True(t, listing.Contains(w))
	}

	sys.Stop(workers[0])

	var updated Listing
	for i := 0; i < 5; i++ {
		select {
		case updated = <-ch:
			if len(updated.Refs) == 2 {
				break
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for updated listing")
		}
		if len(updated.Refs) == 2 {
			break
		}
	}
	assert.Len(t, updated.Refs, 2)
	assert.False(t, updated.Contains(workers[0]))
}

func TestServiceKeyIdentity(t *testing.T) {
	k := NewServiceKey[Work]("pool")
	assert.Equal(t, "pool", k.ID())
	assert.Equal(t, reflect.TypeOf(Work{}), k.MessageType())
	assert.Contains(t, k.String(), "pool")
}
