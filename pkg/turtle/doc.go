/*
Package turtle is the script side of the turtle-graphics runtime.

A Turtle is a handle on one turtle owned by the engine. Every method sends one
request and blocks until the engine answers, so a script observes its effects
in order. Animated commands return only once the animation has finished.

Calls never return errors. When the engine is gone, or rejects a request, the
call aborts the script; run scripts under Guard (or pkg/runner) to turn the
abort into an error:

	err := turtle.Guard(func() {
		t.Speed(5)
		for range 4 {
			t.Forward(100)
			t.Right(90)
		}
	})
	if errors.Is(err, domain.ErrEngineGone) {
		// window closed before the script finished
	}

A Turtle must be used by a single goroutine. Use Hatch to get another turtle
for another goroutine.
*/
package turtle
