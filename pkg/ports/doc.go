/*
Package ports defines the driven ports (interfaces) of the tortuga engine.

These interfaces decouple the turtle core from its external collaborators,
so the same engine can paint into a window, a terminal, a JSON stream or an
in-memory canvas, and ask for input through any dialog mechanism.

# Key Interfaces

  - Renderer: consumes draw commands and window-level operations.
  - InputDialog: collects a number or a line of text from a human.
  - SnapshotStore: checkpoints turtle poses for remote sessions.
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
