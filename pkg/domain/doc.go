/*
Package domain contains the core data model of the tortuga turtle-graphics runtime.

It defines the pose and pen state of a turtle, the requests a script can issue,
and the request/response envelopes that travel between the script context and
the engine context. The package is pure data: no I/O, no goroutines.

# Key Entities

  - Transform: a 2x3 affine matrix (rotation + translation) holding the turtle pose.
  - TurtleState: the pose plus angle, pen state, pen width and fill colour.
  - DrawRequest: what a script asks the pen to do (move, turn, circle, stamp...).
  - Request / Response: the protocol envelope, one response per request.
  - Color: a resolved RGB triple or the CurrentColor sentinel.
*/
package domain
