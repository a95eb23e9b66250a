// Package encode builds the render encoder's three parallel binary
// buffers (u32 / f32 / utf-8 text) plus a u32 style-run buffer,
// describing the viewport-clipped display list a host renderer paints
// from. Buffers are reused across Build calls: reset clears them in
// place so a steady-state render loop allocates only when growth is
// actually needed, per Prepare's capacity hint. Pointers into a buffer
// are stable only between writes — every Build may move them.
package encode
