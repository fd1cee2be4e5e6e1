package actor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lguibr/actorkit/actor"
)

func TestPathChildAndStringRendering(t *testing.T) {
	root := actor.RootPath("mySystem")
	room := root.Child("room-1")
	paddle := room.Child("paddle-2")

	assert.Equal(t, "mySystem://user", root.String())
	assert.Equal(t, "mySystem://user/room-1/paddle-2", paddle.String())
	assert.Equal(t, "paddle-2", paddle.Name())
	assert.True(t, paddle.IsChildOf(room))
	assert.False(t, paddle.IsChildOf(root))
}

func TestPIDEqualityByPathAndUid(t *testing.T) {
	path := actor.RootPath("sys").Child("a")
	p1 := actor.NewPID(path, "uid-1")
	p2 := actor.NewPID(path, "uid-1")
	p3 := actor.NewPID(path, "uid-2")

	assert.True(t, p1.Equal(p2))
	assert.False(t, p1.Equal(p3), "a restarted actor's new incarnation must compare unequal to its old one")
}

func TestZeroPIDIsZero(t *testing.T) {
	var zero actor.PID
	assert.True(t, zero.IsZero())

	named := actor.NewPID(actor.RootPath("sys").Child("a"), "uid")
	assert.False(t, named.IsZero())
}
