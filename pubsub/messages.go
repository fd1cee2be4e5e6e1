package pubsub

import "github.com/lguibr/actorkit/actor"

type subscribeMsg struct {
	subscriber actor.PID
}

type unsubscribeMsg struct {
	subscriber actor.PID
}

type publishMsg struct {
	message interface{}
}
