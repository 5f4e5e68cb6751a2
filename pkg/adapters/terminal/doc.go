/*
Package terminal renders turtle drawings as a coloured command log and asks
for input on a line-based terminal.

The Renderer keeps the same bookkeeping as the in-memory canvas, so fills and
undo behave identically, and prints each finished command in the turtle's
pen colour through termenv. The Dialog reads answers from stdin through a
single pump goroutine, so a prompt can be abandoned when its context ends
without losing the reader.
*/
package terminal
