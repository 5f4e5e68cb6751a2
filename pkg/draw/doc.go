// Package draw is the renderer-agnostic output of the turtle state machine.
//
// Every Command describes something a renderer should paint (a stroke, a dot,
// a stamped shape) or a style change. Commands are plain data; the only
// behaviour is IsStamp, which tells the undo path whether an entry left a
// durable shape on the canvas rather than a transient stroke.
package draw
