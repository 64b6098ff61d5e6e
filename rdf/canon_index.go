package rdf

// blankNodeInfo lists the quads mentioning a blank node and caches its first-degree hash.
type blankNodeInfo struct {
	quads []int
	hash  string
}

// indexBlankNodes maps every blank node label to the quads that mention it.
// A quad is recorded once per position the label occupies, so a self-loop
// appears twice in its node's list.
func indexBlankNodes(quads []Quad) map[string]*blankNodeInfo {
	nodes := make(map[string]*blankNodeInfo)
	for i, q := range quads {
		for _, term := range [...]Term{q.S, q.O, q.G} {
			b, ok := term.(BlankNode)
			if !ok {
				continue
			}
			info := nodes[b.ID]
			if info == nil {
				info = &blankNodeInfo{}
				nodes[b.ID] = info
			}
			info.quads = append(info.quads, i)
		}
	}
	return nodes
}
