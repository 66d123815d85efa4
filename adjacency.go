package dirt

// Adjacency 每个顶点通过边相连的邻接顶点，每条边各记一次
type Adjacency [][]uint32

func BuildAdjacency(m Mesh) Adjacency {
	con := make(Adjacency, m.VertexCount())
	for i := 0; i < m.EdgeCount(); i++ {
		e := m.Edge(i)
		con[e[0]] = append(con[e[0]], e[1])
		con[e[1]] = append(con[e[1]], e[0])
	}
	return con
}

func (a Adjacency) Neighbors(v int) []uint32 {
	return a[v]
}

// Symmetric 检查每个 a->b 是否都有对应的 b->a
func (a Adjacency) Symmetric() bool {
	count := make(map[[2]uint32]int)
	for v, ns := range a {
		for _, n := range ns {
			count[[2]uint32{uint32(v), n}]++
		}
	}
	for k, c := range count {
		if count[[2]uint32{k[1], k[0]}] != c {
			return false
		}
	}
	return true
}
