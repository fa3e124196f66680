package nd

// buffer is the backing storage shared by an array and its views.
// Fixed-width elements are laid out back to back at stride bytes;
// variable-width elements are located through offsets (len n+1).
// A buffer is never written after it is built.
type buffer struct {
	data    []byte
	stride  int
	offsets []int
	n       int
}

func (b *buffer) variable() bool {
	return b.offsets != nil
}

// element returns the bytes of element i without copying.
func (b *buffer) element(i int) []byte {
	if b.variable() {
		return b.data[b.offsets[i]:b.offsets[i+1]:b.offsets[i+1]]
	}
	start := i * b.stride
	return b.data[start : start+b.stride : start+b.stride]
}

// slice returns a single-element buffer sharing storage with b.
func (b *buffer) slice(i int) *buffer {
	raw := b.element(i)
	if b.variable() {
		return &buffer{data: raw, offsets: []int{0, len(raw)}, n: 1}
	}
	return &buffer{data: raw, stride: b.stride, n: 1}
}

// newFixedBuffer packs elems that are each exactly stride bytes long.
func newFixedBuffer(elems [][]byte, stride int) *buffer {
	data := make([]byte, 0, stride*len(elems))
	for _, e := range elems {
		data = append(data, e...)
	}
	return &buffer{data: data, stride: stride, n: len(elems)}
}

func newVarBuffer(elems [][]byte) *buffer {
	total := 0
	for _, e := range elems {
		total += len(e)
	}
	data := make([]byte, 0, total)
	offsets := make([]int, 0, len(elems)+1)
	offsets = append(offsets, 0)
	for _, e := range elems {
		data = append(data, e...)
		offsets = append(offsets, len(data))
	}
	return &buffer{data: data, offsets: offsets, n: len(elems)}
}
