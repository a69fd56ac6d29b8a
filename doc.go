// Package minilight is a simple 2D lighting overlay for tile-based maps
// rendered with [Ebitengine].
//
// A darkness layer is drawn above the map and radial light sources attached
// to the player or to map events brighten it with additive blending. Lights
// can flicker, grow over a number of ticks, and follow their entity while it
// walks, jumps or the camera scrolls. It does not cast shadows or tint.
//
// # Quick start
//
// The host adapts its entities to [Anchor] and exposes them through an
// [EntityResolver] ([ActorMap] and [Actor] are ready-made versions), then
// drives a [Session] from its game loop:
//
//	session := minilight.NewSession(minilight.DefaultConfig(), actors, nil)
//	session.EnterMap(actors)
//	session.Exec("light set 200 #000000", 0)
//	session.Exec("light add 0 150 100", 0)
//
//	func (g *Game) Update() error { g.actors.Update(); g.session.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.drawMap(s); g.session.Draw(s) }
//
// # Commands
//
// [Interpreter] understands the "light" command family:
//
//	light set O C          darkness opacity (0-255) and hex color
//	light add I R O        light on entity I: radius R, centre opacity O
//	light addf I R O       flickering light
//	light sub I            remove the light
//	light grow I R O T F   change the light and grow it to radius T over F ticks
//	light I R O            change the light
//
// Entity 0 is the player; a negative id is the event issuing the command.
// Events can also declare a light in a page comment ("light 150 100" or
// "lightf 150 100"); call [Session.SetupEventPage] when a page activates.
//
// # Rendering
//
// [LightLayer] keeps one sprite per light. Gradient textures are rebuilt only
// when a light's radius or opacity changes, and the sprite set is rebuilt
// whenever the number of lights changes.
//
// # Persistence
//
// [Registry.Snapshot] and [Registry.Restore] convert the lighting state to a
// YAML-serializable [Snapshot]; [SaveStore] keeps snapshots in gdata slots.
//
// [Ebitengine]: https://ebitengine.org
package minilight
