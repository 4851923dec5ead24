package game

import "math/rand/v2"

// --- Discovery Tables ---

type DiscoveryKind int

const (
	DiscoverEmpty DiscoveryKind = iota
	DiscoverResource
	DiscoverAliens
)

type Discovery struct {
	Kind                DiscoveryKind
	ResourceName        string
	ResourceDescription string
	AlienCount          int
}

type Cell struct{ X, Y int }

type discoveryOption struct {
	kind      DiscoveryKind
	resource  string
	desc      string
	maxAliens int
}

// Every option is equally likely; empties are listed once per weight.
var centerTable = []discoveryOption{
	{kind: DiscoverResource, resource: "Iron", desc: "Common metal ore"},
	{kind: DiscoverResource, resource: "Copper", desc: "Useful for electronics"},
	{kind: DiscoverResource, resource: "Silicon", desc: "Essential for computers"},
	{kind: DiscoverAliens, maxAliens: 5},
	{kind: DiscoverEmpty},
}

var surroundingTable = []discoveryOption{
	{kind: DiscoverResource, resource: "Iron", desc: "Common metal ore"},
	{kind: DiscoverAliens, maxAliens: 3},
	{kind: DiscoverEmpty},
	{kind: DiscoverEmpty},
	{kind: DiscoverEmpty},
	{kind: DiscoverEmpty},
}

// Neighborhood lists the 3x3 block centred on (cx, cy), centre included.
func Neighborhood(cx, cy int) []Cell {
	cells := make([]Cell, 0, 9)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			cells = append(cells, Cell{X: cx + dx, Y: cy + dy})
		}
	}
	return cells
}

// RollCell draws the content of one undiscovered cell.
func RollCell(rng *rand.Rand, center bool) Discovery {
	table := surroundingTable
	if center {
		table = centerTable
	}
	opt := table[rng.IntN(len(table))]
	d := Discovery{Kind: opt.kind, ResourceName: opt.resource, ResourceDescription: opt.desc}
	if opt.kind == DiscoverAliens {
		d.AlienCount = rng.IntN(opt.maxAliens) + 1
	}
	return d
}
