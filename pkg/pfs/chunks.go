package pfs

import "sort"

type chunk struct {
	orderNum uint16
	data     []byte
}

// reassembler accumulates out-of-order subsection chunks during one
// chunk-collection pass. Each pass owns its own reassembler; nothing is
// shared across sibling recursive parses.
type reassembler struct {
	chunks []chunk
}

func (r *reassembler) add(orderNum uint16, data []byte) {
	r.chunks = append(r.chunks, chunk{orderNum: orderNum, data: data})
}

func (r *reassembler) len() int {
	return len(r.chunks)
}

// assemble sorts the collected chunks by order number and concatenates them
// into the subsection's true payload. The sort is stable: well-formed input
// never repeats an order number, but if one does, encounter order wins.
func (r *reassembler) assemble() []byte {
	sort.SliceStable(r.chunks, func(i, j int) bool {
		return r.chunks[i].orderNum < r.chunks[j].orderNum
	})

	var size int
	for _, c := range r.chunks {
		size += len(c.data)
	}

	out := make([]byte, 0, size)
	for _, c := range r.chunks {
		out = append(out, c.data...)
	}
	return out
}
