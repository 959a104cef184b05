package domain

// PayloadShape is the detected shape of an insiders API payload.
type PayloadShape string

const (
	ShapeNone      PayloadShape = "none"
	ShapeFlatArray PayloadShape = "flat-array"
	ShapeGrouped   PayloadShape = "grouped"
	ShapeGraph     PayloadShape = "graph"
	ShapeUnknown   PayloadShape = "unknown"
)

// Cluster is a group of linked wallets.
type Cluster struct {
	ID              string   `json:"id"`
	MemberAddresses []string `json:"members"`
	TotalPercentage float64  `json:"totalPercentage"`
	ClusterType     string   `json:"type,omitempty"`
}

// ClusterGraph is the normalized wallet-relationship model for one mint.
type ClusterGraph struct {
	Clusters          []Cluster    `json:"clusters"`
	BundledAddresses  []string     `json:"bundledAddresses"` // sorted, unique
	BundledPercentage float64      `json:"bundledPercentage"`
	Shape             PayloadShape `json:"shape"`
	SoftError         string       `json:"error,omitempty"`
}

// IsEmpty reports whether the graph carries no clusters and no bundled wallets.
func (g *ClusterGraph) IsEmpty() bool {
	return g == nil || (len(g.Clusters) == 0 && len(g.BundledAddresses) == 0)
}

// IsBundled reports whether address is in the bundled set.
func (g *ClusterGraph) IsBundled(address string) bool {
	if g == nil {
		return false
	}
	for _, a := range g.BundledAddresses {
		if a == address {
			return true
		}
	}
	return false
}

// BundledSet returns the bundled addresses as a set for batch lookups.
func (g *ClusterGraph) BundledSet() map[string]struct{} {
	if g == nil {
		return nil
	}
	set := make(map[string]struct{}, len(g.BundledAddresses))
	for _, a := range g.BundledAddresses {
		set[a] = struct{}{}
	}
	return set
}
