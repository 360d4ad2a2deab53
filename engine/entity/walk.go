package entity

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/go-gl/mathgl/mgl32"
)

// VisitFunc is called once per non-root entity reached by Walk. A returned error stops the walk.
type VisitFunc func(index int, e Entity, world mgl32.Mat4) error

// Walk traverses the graph below root depth-first, in child order, computing each entity's world
// transform as parent world × local. The root's own transform is applied but the root is not visited.
//
// Parameters:
//   - entities: the entity slice that child indices refer to
//   - root: the synthesised root entity
//   - visit: called for every reached entity
//
// Returns:
//   - error: wraps common.ErrReference when a child index is out of range or an entity is reached
//     twice, or the first error returned by visit
func Walk(entities []Entity, root Entity, visit VisitFunc) error {
	w := walker{
		entities: entities,
		visited:  make([]bool, len(entities)),
		visit:    visit,
	}
	return w.children(root, root.Transform())
}

type walker struct {
	entities []Entity
	visited  []bool
	visit    VisitFunc
}

func (w *walker) children(parent Entity, parentWorld mgl32.Mat4) error {
	for _, idx := range parent.Children() {
		if idx < 0 || idx >= len(w.entities) {
			return fmt.Errorf("entity %q child %d out of range [0,%d): %w", parent.Name(), idx, len(w.entities), common.ErrReference)
		}
		if w.visited[idx] {
			return fmt.Errorf("entity %d reached twice: %w", idx, common.ErrReference)
		}
		w.visited[idx] = true

		e := w.entities[idx]
		world := parentWorld.Mul4(e.Transform())
		if err := w.visit(idx, e, world); err != nil {
			return err
		}
		if err := w.children(e, world); err != nil {
			return err
		}
	}
	return nil
}
