// Package canvas implements the drawing surface the render queue flushes
// into: an opaque truecolor pixel buffer at device resolution.
//
// All geometry arrives in logical units and is scaled by the device-pixel
// ratio before touching the surface; every geometric argument maps to
// floor(logical * dpr) device pixels. The canvas owns the mutable style
// state the instruction stream manipulates — current foreground,
// background and special colors plus the selected font — which persists
// across instructions until explicitly changed. All access is
// single-threaded: only the render queue's flush touches the surface.
package canvas
