package insiders

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"solana-holder-lab/internal/domain"
)

// payload is a decoded insiders response tagged with its detected shape.
type payload struct {
	shape    domain.PayloadShape
	insiders []json.RawMessage
	clusters []json.RawMessage
	nodes    []json.RawMessage
	edges    []json.RawMessage
}

// insider is one wallet record in any shape.
type insider struct {
	address    string
	percentage float64
	hasPct     bool
	kind       string
}

// DetectShape reports which known shape raw has.
func DetectShape(raw []byte) domain.PayloadShape {
	return detect(raw).shape
}

func detect(raw []byte) payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return payload{shape: domain.ShapeNone}
	}

	var list []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return payload{shape: domain.ShapeUnknown}
		}
		return payload{shape: domain.ShapeFlatArray, insiders: list}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return payload{shape: domain.ShapeUnknown}
	}

	if nodes := arrayField(obj, "nodes"); nodes != nil {
		edges := arrayField(obj, "edges")
		if edges == nil {
			edges = arrayField(obj, "links")
		}
		return payload{shape: domain.ShapeGraph, nodes: nodes, edges: edges}
	}

	insiders := arrayField(obj, "insiders")
	clusters := arrayField(obj, "clusters")
	if insiders != nil || clusters != nil {
		return payload{shape: domain.ShapeGrouped, insiders: insiders, clusters: clusters}
	}

	// Some providers wrap the body in a data envelope.
	if inner, ok := obj["data"]; ok {
		if p := detect(inner); p.shape != domain.ShapeNone {
			return p
		}
	}

	return payload{shape: domain.ShapeUnknown}
}

func arrayField(obj map[string]json.RawMessage, key string) []json.RawMessage {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil
	}
	return list
}

// parseInsider reads a wallet record that is either a bare address string or
// an object with address, percentage and type fields under common aliases.
func parseInsider(raw json.RawMessage) (insider, bool) {
	var addr string
	if err := json.Unmarshal(raw, &addr); err == nil {
		return insider{address: addr}, addr != ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return insider{}, false
	}
	in := insider{
		address: stringField(obj, "address", "wallet", "owner", "id"),
		kind:    stringField(obj, "type", "label", "category", "tag"),
	}
	in.percentage, in.hasPct = numberField(obj, "percentage", "percent", "pct", "share", "holdingPercentage")
	return in, in.address != ""
}

func stringField(obj map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func numberField(obj map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			if validPercentage(f) {
				return f, true
			}
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			s = strings.TrimSuffix(strings.TrimSpace(s), "%")
			if v, err := strconv.ParseFloat(s, 64); err == nil && validPercentage(v) {
				return v, true
			}
		}
	}
	return 0, false
}

// validPercentage rejects NaN, infinities and negative shares.
func validPercentage(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func stringList(obj map[string]json.RawMessage, keys ...string) []json.RawMessage {
	for _, k := range keys {
		if list := arrayField(obj, k); list != nil {
			return list
		}
	}
	return nil
}

func isBundleType(kind string) bool {
	return strings.Contains(strings.ToLower(kind), "bundle")
}
