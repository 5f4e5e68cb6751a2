/*
Package tortuga is a turtle-graphics runtime.

A script drives one or more turtles over a 2D canvas with motion, rotation and
drawing commands. The engine turns every command into affine-transformed
geometry and a stream of renderer-agnostic draw commands, animates motion at
the configured speed, answers input prompts and keeps a per-turtle history so
that any command can be undone.

# Concept

The runtime has two sides. Scripts run in their own goroutines and talk to
their turtle through a pkg/turtle handle: every call sends one request and
blocks until the engine answers. The engine runs on a single goroutine, owns
every turtle's state, and feeds a ports.Renderer. Renderers and input dialogs
are adapters (in-memory canvas, terminal, JSON lines), so the core runs the
same way headless, in a terminal, or behind an HTTP or MCP server.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/tortuga"
		"github.com/aretw0/tortuga/pkg/adapters/memory"
		"github.com/aretw0/tortuga/pkg/turtle"
	)

	func main() {
		canvas := memory.NewCanvas()
		eng := tortuga.New(tortuga.WithRenderer(canvas))
		t := eng.NewTurtle()

		go func() {
			defer eng.Stop()
			if err := turtle.Guard(func() {
				t.Speed(5)
				for range 4 {
					t.Forward(100)
					t.Right(90)
				}
			}); err != nil {
				log.Print(err)
			}
		}()

		if err := eng.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
	}

pkg/runner wraps this pattern, supervising several scripts at once.
*/
package tortuga
