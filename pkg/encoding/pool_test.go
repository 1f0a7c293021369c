package encoding

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_CopiesBuffer(t *testing.T) {
	out, err := Render(func(buf *bytes.Buffer) error {
		buf.WriteString("<request/>")
		return nil
	})
	require.NoError(t, err)

	// reuse the pool; the returned slice must not change
	_, _ = Render(func(buf *bytes.Buffer) error {
		buf.WriteString("overwritten")
		return nil
	})
	assert.Equal(t, "<request/>", string(out))
}

func TestRender_Error(t *testing.T) {
	out, err := Render(func(buf *bytes.Buffer) error {
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestGetBuffer_Empty(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("data")
	PutBuffer(buf)

	assert.Equal(t, 0, GetBuffer().Len())

	large := bytes.NewBufferString(strings.Repeat("x", maxPooledBufferSize+1))
	PutBuffer(large)
	assert.Equal(t, maxPooledBufferSize+1, large.Len(), "oversized buffers are dropped, not reset")
}
