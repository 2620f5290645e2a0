package ainb

// Fuzz is the go-fuzz entry point: decode data and walk every node's plug
// slots so field-specific panics (bad slice bounds, nil derefs) surface
// during corpus minimization instead of only on access.
func Fuzz(data []byte) int {
	a, err := NewBytes(data, nil)
	if err != nil {
		return 0
	}
	for _, n := range a.Nodes {
		for t := PlugType(0); int(t) < plugTypeCount; t++ {
			for _, p := range n.Plugs(t) {
				if p != nil {
					_ = p.Kind()
					_ = p.TargetNodeIndex()
				}
			}
		}
	}
	if _, err := a.MarshalJSON(); err != nil {
		return 0
	}
	return 1
}
