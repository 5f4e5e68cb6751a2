/*
Package jsonl speaks newline-delimited JSON for headless hosts.

The Renderer writes one Event per line for every renderer call, with draw
commands in their draw.Envelope wire form. The Dialog writes prompt events
on the same Stream and reads one answer line per prompt:

	{"value": 42}
	{"cancelled": true}
	42
	"a line of text"

Anything that is not JSON is taken as raw text.
*/
package jsonl
