package encoding

import (
	"bytes"
	"sync"
)

// maxPooledBufferSize keeps outlier documents from pinning memory in the pool
const maxPooledBufferSize = 64 * 1024

// BufferPool pools bytes.Buffer for XML document rendering
var BufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves an empty bytes.Buffer from the pool
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a bytes.Buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	BufferPool.Put(buf)
}

// Render runs write against a pooled buffer and returns a copy of what it wrote
func Render(write func(buf *bytes.Buffer) error) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := write(buf); err != nil {
		return nil, err
	}

	// Copy the buffer contents since the buffer goes back to the pool
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
