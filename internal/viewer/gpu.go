package viewer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/arbor/pkg/mesh"
)

// gpuMesh is an uploaded buffer set. Lines have no normals and no indices.
type gpuMesh struct {
	vao     uint32
	vbos    [2]uint32
	ebo     uint32
	count   int32
	indexed bool
}

func uploadBuffers(b *mesh.Buffers) gpuMesh {
	m := gpuMesh{count: int32(len(b.Indices)), indexed: true}
	if b.IsEmpty() {
		return m
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(2, &m.vbos[0])
	uploadAttribute(m.vbos[0], 0, b.Positions)
	uploadAttribute(m.vbos[1], 1, b.Normals)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(b.Indices)*4, gl.Ptr(b.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return m
}

func uploadLines(lines []float32) gpuMesh {
	m := gpuMesh{count: int32(len(lines) / 3)}
	if m.count == 0 {
		return m
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbos[0])
	uploadAttribute(m.vbos[0], 0, lines)
	// Constant normal for the unused attribute.
	gl.VertexAttrib3f(1, 0, 1, 0)
	gl.BindVertexArray(0)
	return m
}

func uploadAttribute(vbo, location uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.VertexAttribPointer(location, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(location)
}

func (m *gpuMesh) draw(mode uint32) {
	if m.vao == 0 || m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(mode, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, m.count)
	}
	gl.BindVertexArray(0)
}

func (m *gpuMesh) release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	for i := range m.vbos {
		if m.vbos[i] != 0 {
			gl.DeleteBuffers(1, &m.vbos[i])
		}
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = gpuMesh{}
}
