package insiders

import (
	"encoding/json"
	"fmt"
	"sort"

	"solana-holder-lab/internal/domain"
)

// ErrUnknownShape is the soft error for payloads of no known shape.
const ErrUnknownShape = "unknown insiders payload shape"

// Normalize converts a raw insiders payload into a ClusterGraph.
// Unknown shapes yield an empty graph carrying a soft error.
func Normalize(raw []byte) *domain.ClusterGraph {
	p := detect(raw)
	b := newBuilder()

	switch p.shape {
	case domain.ShapeNone:
		return emptyGraph(domain.ShapeNone, "")
	case domain.ShapeUnknown:
		return emptyGraph(domain.ShapeUnknown, ErrUnknownShape)
	case domain.ShapeFlatArray:
		b.addInsiders(p.insiders)
	case domain.ShapeGrouped:
		b.addInsiders(p.insiders)
		b.addClusters(p.clusters)
	case domain.ShapeGraph:
		b.addInsiders(p.nodes)
		b.addComponents(p.edges)
	}
	return b.graph(p.shape)
}

func emptyGraph(shape domain.PayloadShape, softErr string) *domain.ClusterGraph {
	return &domain.ClusterGraph{
		Clusters:         []domain.Cluster{},
		BundledAddresses: []string{},
		Shape:            shape,
		SoftError:        softErr,
	}
}

type builder struct {
	order    []string // first-seen address order
	pct      map[string]float64
	kind     map[string]string
	clusters []domain.Cluster
	bundled  map[string]struct{}
	// clusters whose total is used because no member carries a percentage
	totals []float64
}

func newBuilder() *builder {
	return &builder{
		pct:     make(map[string]float64),
		kind:    make(map[string]string),
		bundled: make(map[string]struct{}),
	}
}

func (b *builder) see(in insider) {
	if _, ok := b.kind[in.address]; !ok {
		b.order = append(b.order, in.address)
		b.kind[in.address] = in.kind
	}
	if in.hasPct {
		if _, ok := b.pct[in.address]; !ok {
			b.pct[in.address] = in.percentage
		}
	}
	if in.kind != "" && b.kind[in.address] == "" {
		b.kind[in.address] = in.kind
	}
}

func (b *builder) addInsiders(records []json.RawMessage) {
	for _, raw := range records {
		in, ok := parseInsider(raw)
		if !ok {
			continue
		}
		b.see(in)
		if isBundleType(in.kind) {
			b.bundled[in.address] = struct{}{}
		}
	}
}

func (b *builder) addClusters(records []json.RawMessage) {
	for i, raw := range records {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}

		var members []string
		seen := make(map[string]struct{})
		for _, m := range stringList(obj, "members", "addresses", "wallets", "holders") {
			in, ok := parseInsider(m)
			if !ok {
				continue
			}
			if _, dup := seen[in.address]; dup {
				continue
			}
			seen[in.address] = struct{}{}
			b.see(in)
			members = append(members, in.address)
		}
		if len(members) == 0 {
			continue
		}

		id := stringField(obj, "id", "clusterId", "name")
		if id == "" {
			id = fmt.Sprintf("cluster-%d", i+1)
		}
		kind := stringField(obj, "type", "clusterType", "label")
		total, hasTotal := numberField(obj, "totalPercentage", "percentage", "pct", "share")
		if !hasTotal {
			total = b.sum(members)
		}
		b.addCluster(domain.Cluster{ID: id, MemberAddresses: members, TotalPercentage: total, ClusterType: kind})
	}
}

// addComponents links graph nodes through edges and keeps components of two
// or more wallets as clusters.
func (b *builder) addComponents(edges []json.RawMessage) {
	var pairs [][2]string
	for _, raw := range edges {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		from := stringField(obj, "source", "from", "a")
		to := stringField(obj, "target", "to", "b")
		if from == "" || to == "" {
			continue
		}
		b.see(insider{address: from})
		b.see(insider{address: to})
		pairs = append(pairs, [2]string{from, to})
	}

	for i, component := range connectedComponents(b.order, pairs) {
		if len(component) < 2 {
			continue
		}
		b.addCluster(domain.Cluster{
			ID:              fmt.Sprintf("component-%d", i+1),
			MemberAddresses: component,
			TotalPercentage: b.sum(component),
			ClusterType:     "connected",
		})
	}
}

func (b *builder) addCluster(c domain.Cluster) {
	b.clusters = append(b.clusters, c)
	if len(c.MemberAddresses) < 2 && !isBundleType(c.ClusterType) {
		return
	}
	anyPct := false
	for _, addr := range c.MemberAddresses {
		b.bundled[addr] = struct{}{}
		if _, ok := b.pct[addr]; ok {
			anyPct = true
		}
	}
	if !anyPct {
		b.totals = append(b.totals, c.TotalPercentage)
	}
}

func (b *builder) sum(addrs []string) float64 {
	var total float64
	for _, a := range addrs {
		total += b.pct[a]
	}
	return total
}

func (b *builder) graph(shape domain.PayloadShape) *domain.ClusterGraph {
	g := emptyGraph(shape, "")
	if b.clusters != nil {
		g.Clusters = b.clusters
	}

	for addr := range b.bundled {
		g.BundledAddresses = append(g.BundledAddresses, addr)
		g.BundledPercentage += b.pct[addr]
	}
	sort.Strings(g.BundledAddresses)
	for _, t := range b.totals {
		g.BundledPercentage += t
	}
	if g.BundledPercentage > 100 {
		g.BundledPercentage = 100
	}
	if g.BundledPercentage < 0 {
		g.BundledPercentage = 0
	}
	return g
}
