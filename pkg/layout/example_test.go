package layout_test

import (
	"fmt"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/layout"
)

func ExamplePosition() {
	// A cherry: two samples under one ancestor, placed on an 800x600 canvas.
	g := arg.New()
	_ = g.AddNode(arg.Node{ID: 0, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 1, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 2, Time: 1})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 0, Left: 0, Right: 1000})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 1, Left: 0, Right: 1000})
	arg.AssignRanks(g)

	idx := arg.NewIndex(g)
	if err := layout.Position(g, idx, layout.DefaultCanvas()); err != nil {
		fmt.Println("position:", err)
		return
	}

	// Samples spread across the padded width; the ancestor centers above
	// them at the top rank.
	for _, n := range g.Nodes() {
		fmt.Printf("node %d at (%v, %v)\n", n.ID, n.X, n.Y)
	}
	fmt.Println("Crossings:", layout.CountCrossings(g))
	// Output:
	// node 0 at (80, 540)
	// node 1 at (720, 540)
	// node 2 at (400, 60)
	// Crossings: 0
}
