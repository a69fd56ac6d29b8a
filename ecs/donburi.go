// Package ecs provides ECS adapters for minilight.
package ecs

import (
	"github.com/phanxgames/minilight"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LightEventType is the Donburi event type for minilight registry events.
// Subscribe to this in your ECS systems to react to lights changing.
var LightEventType = events.NewEventType[minilight.LightEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Registry events are published to LightEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) minilight.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitLightEvent(event minilight.LightEvent) {
	LightEventType.Publish(s.world, event)
}
