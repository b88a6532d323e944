package arg_test

import (
	"fmt"

	"github.com/argviz/argviz/pkg/arg"
)

func ExampleGraph_basic() {
	// Two samples coalescing into a single ancestor.
	g := arg.New()
	_ = g.AddNode(arg.Node{ID: 0, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 1, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 2, Time: 1.5})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 0, Left: 0, Right: 1000})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 1, Left: 0, Right: 1000})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Children of 2:", g.Children(2))
	fmt.Println("Parents of 0:", g.Parents(0))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Children of 2: [0 1]
	// Parents of 0: [2]
}

func ExampleAssignRanks() {
	// Nodes bucket into layers by distinct time; equal times share a rank.
	g := arg.New()
	_ = g.AddNode(arg.Node{ID: 0, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 1, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 2, Time: 1.5})
	_ = g.AddNode(arg.Node{ID: 3, Time: 4.0})

	ranks := arg.AssignRanks(g)
	fmt.Println("Distinct ranks:", ranks)
	for _, tick := range arg.RankTicks(g) {
		fmt.Printf("rank %d = time %v\n", tick.Rank, tick.Time)
	}
	// Output:
	// Distinct ranks: 3
	// rank 0 = time 0
	// rank 1 = time 1.5
	// rank 2 = time 4
}

func ExampleDeduplicate() {
	// Nodes 2 and 3 share a time and the exact same neighbor set, so they
	// merge into one combined node.
	g := arg.New()
	_ = g.AddNode(arg.Node{ID: 0, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 1, Time: 0, IsSample: true})
	_ = g.AddNode(arg.Node{ID: 2, Time: 1})
	_ = g.AddNode(arg.Node{ID: 3, Time: 1})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 0, Left: 0, Right: 500})
	_ = g.AddEdge(arg.Edge{Source: 2, Target: 1, Left: 0, Right: 500})
	_ = g.AddEdge(arg.Edge{Source: 3, Target: 0, Left: 500, Right: 1000})
	_ = g.AddEdge(arg.Edge{Source: 3, Target: 1, Left: 500, Right: 1000})

	result := arg.Deduplicate(g, arg.DedupOptions{})
	fmt.Println("Merged:", result.Merged)
	fmt.Println("Nodes:", result.Graph.NodeCount())
	survivor, _ := result.Graph.Node(2)
	fmt.Println("Combined:", survivor.Combined, "Members:", survivor.Members)
	fmt.Println("Node 3 maps to:", result.Mapping[3])
	// Output:
	// Merged: 1
	// Nodes: 3
	// Combined: true Members: [2 3]
	// Node 3 maps to: 2
}
