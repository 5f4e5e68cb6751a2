/*
Package session implements remote turtle sessions.

A session is one turtle on a long-running engine, addressed by a UUID so that
HTTP or MCP clients can drive it across requests. The Manager serialises
commands per session with a reference-counted local lock, optionally backed by
a ports.DistributedLocker, and checkpoints the turtle's pose into a
ports.SnapshotStore after each batch. A replica that does not hold the turtle
resumes it from the last checkpoint; the drawing itself is never persisted.
*/
package session
