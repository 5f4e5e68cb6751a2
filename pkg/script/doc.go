// Package script loads turtle programs from YAML or JSON files and replays
// them on a turtle.
//
// A script is a list of steps. Each step is a single-key map naming the
// command; its value holds the arguments:
//
//	title: Square
//	speed: 5
//	steps:
//	  - pencolor: "#ff8800"
//	  - repeat:
//	      times: 4
//	      steps:
//	        - forward: 100
//	        - right: 90
//	  - circle: {radius: 50, extent: 180, steps: 12}
//	  - goto: [0, 0]
//
// Steps that take no argument may be written as a bare string ("penup").
package script
