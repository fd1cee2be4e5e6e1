package receptionist

import "github.com/lguibr/actorkit/actor"

type registerMsg struct {
	key Key
	ref actor.PID
}

type deregisterMsg struct {
	key Key
	ref actor.PID
}

type findMsg struct {
	key     Key
	replyTo actor.PID
}

type subscribeMsg struct {
	key        Key
	subscriber actor.PID
}
