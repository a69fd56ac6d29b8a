// Package ecs provides ECS adapters for minilight's light registry.
//
// The primary adapter is [NewDonburiSink], which bridges registry mutations
// (lights added, removed, changed, darkness changed) into a [Donburi] world as
// typed events. Subscribe to [LightEventType] in your ECS systems to receive
// them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	session.Registry().SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
