package runtime

import (
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// fillRegion collects the path walked since a BackfillPolygon so that the
// matching Fill can paint it underneath the strokes already drawn.
type fillRegion struct {
	// index is the renderer position of the Filler marker.
	index    int
	vertices domain.Polygon
}

func newFillRegion(index int, start domain.Vec) *fillRegion {
	return &fillRegion{index: index, vertices: domain.Polygon{start}}
}

// track adds the vertices visited by cmd, skipping repeats of the last vertex.
func (f *fillRegion) track(cmd draw.Command) {
	for _, v := range draw.Vertices(cmd) {
		if last := f.vertices[len(f.vertices)-1]; last == v {
			continue
		}
		f.vertices = append(f.vertices, v)
	}
}

// len reports the vertex count; nil regions have none.
func (f *fillRegion) len() int {
	if f == nil {
		return 0
	}
	return len(f.vertices)
}

// rewind drops the vertices tracked after the first n.
func (f *fillRegion) rewind(n int) {
	if f != nil && n < len(f.vertices) {
		f.vertices = f.vertices[:n]
	}
}

func (f *fillRegion) polygon() domain.Polygon {
	out := make(domain.Polygon, len(f.vertices))
	copy(out, f.vertices)
	return out
}
