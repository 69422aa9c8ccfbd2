package hex

// NumDirections is the count of neighbour directions around a hex cell
const NumDirections = 6

// Directions returns the six neighbour index deltas in ring-walk order
func (g Geometry) Directions() [NumDirections]int {
	return [NumDirections]int{-1, -g.ZStep, -g.YStep, 1, g.ZStep, g.YStep}
}

// RingOffsets returns the index deltas of one ring of radius r around the origin
// The walk starts r rows out along z and steps r cells per edge; len is 6r
func (g Geometry) RingOffsets(r int) []int {
	return g.AppendRingOffsets(nil, r)
}

// AppendRingOffsets appends the ring of radius r to dst, reusing its storage
func (g Geometry) AppendRingOffsets(dst []int, r int) []int {
	if r <= 0 {
		return dst
	}
	top := g.ZStep * r
	for _, dir := range g.Directions() {
		for i := 0; i < r; i++ {
			top += dir
			dst = append(dst, top)
		}
	}
	return dst
}
