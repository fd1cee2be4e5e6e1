package sharding

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lguibr/actorkit/actor"
)

type orderMsg struct {
	accountID string
	amount    int
	replyTo   actor.PID
}

type byAccount struct{}

func (byAccount) EntityID(message interface{}) string {
	return message.(orderMsg).accountID
}

func (byAccount) ShardID(message interface{}) string {
	// Two shards, bucketed by the first rune of the account id.
	id := message.(orderMsg).accountID
	if id == "" {
		return "default"
	}
	return fmt.Sprintf("shard-%d", id[0]%2)
}

func accountEntity(entityID string) actor.Behavior {
	balance := 0
	return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		switch m := msg.(type) {
		case orderMsg:
			balance += m.amount
			ctx.Tell(m.replyTo, balance)
		case Passivate:
			return actor.StoppedDirective()
		}
		return actor.Same()
	})
}

func TestShardRegionLazilySpawnsAndRoutesByEntity(t *testing.T) {
	sys := actor.NewSystem("shard-basic", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	region := NewShardRegion(sys, byAccount{}, accountEntity, actor.Supervision{Kind: actor.Resume}, DefaultConfig())

	replyCh := make(chan interface{}, 4)
	collector, err := sys.Spawn(actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		replyCh <- msg
		return actor.Same()
	}), "collector")
	require.NoError(t, err)

	require.NoError(t, region.Tell(orderMsg{accountID: "alice", amount: 10, replyTo: collector}, actor.PID{}))
	require.NoError(t, region.Tell(orderMsg{accountID: "alice", amount: 5, replyTo: collector}, actor.PID{}))

	var last interface{}
	for i := 0; i < 2; i++ {
		select {
		case last = <-replyCh:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for entity reply")
		}
	}
	assert.Equal(t, 15, last, "messages for the same entity should accumulate on one actor")
}

func TestShardRegionIdleSweepLeavesActiveEntityRouted(t *testing.T) {
	sys := actor.NewSystem("shard-passivate", actor.DefaultConfig(), nil)
	defer sys.Shutdown(2 * time.Second)

	cfg := DefaultConfig()
	region := NewShardRegion(sys, byAccount{}, accountEntity, actor.Supervision{Kind: actor.Resume}, cfg)

	replyCh := make(chan interface{}, 8)
	collector, err := sys.Spawn(actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		replyCh <- msg
		return actor.Same()
	}), "collector-2")
	require.NoError(t, err)

	require.NoError(t, region.Tell(orderMsg{accountID: "bob", amount: 100, replyTo: collector}, actor.PID{}))
	select {
	case <-replyCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first reply")
	}

	shardPID, err := sys.GetOrSpawn(shardNamePrefix+byAccount{}.ShardID(orderMsg{accountID: "bob"}), func() actor.Behavior {
		return newShardBehavior(accountEntity, actor.Supervision{Kind: actor.Resume}, cfg)
	})
	require.NoError(t, err)
	sys.Tell(shardPID, sweepMsg{}, actor.PID{})

	// The entity hasn't actually gone idle yet (IdleTimeout hasn't elapsed),
	// so this sweep is a no-op; send one more message for bob immediately
	// after to confirm the region keeps routing to the same live entity.
	require.NoError(t, region.Tell(orderMsg{accountID: "bob", amount: 1, replyTo: collector}, actor.PID{}))
	select {
	case v := <-replyCh:
		assert.Equal(t, 101, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second reply")
	}
}
