package skeleton

// Lines returns line-list vertices for a wireframe view of the segments.
// Format: [x, y, z] per vertex, two vertices per segment.
func Lines(segments []Segment) []float32 {
	out := make([]float32, 0, len(segments)*6)
	for _, s := range segments {
		out = append(out,
			s.Start.X, s.Start.Y, s.Start.Z,
			s.End.X, s.End.Y, s.End.Z,
		)
	}
	return out
}

// Bounds returns the axis-aligned box around all segment endpoints as
// [minX, minY, minZ, maxX, maxY, maxZ]. Empty input yields a zero box.
func Bounds(segments []Segment) [6]float32 {
	if len(segments) == 0 {
		return [6]float32{}
	}
	b := [6]float32{1e10, 1e10, 1e10, -1e10, -1e10, -1e10}
	for _, s := range segments {
		for _, p := range [2][3]float32{s.Start.Array(), s.End.Array()} {
			for k := 0; k < 3; k++ {
				if p[k] < b[k] {
					b[k] = p[k]
				}
				if p[k] > b[k+3] {
					b[k+3] = p[k]
				}
			}
		}
	}
	return b
}

// BoxLines creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func BoxLines(b [6]float32) []float32 {
	minX, minY, minZ, maxX, maxY, maxZ := b[0], b[1], b[2], b[3], b[4], b[5]
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// BoxLineVertexCount is the number of vertices BoxLines returns.
const BoxLineVertexCount = 24
