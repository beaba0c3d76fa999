package filebuffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileBuffer(t *testing.T) {
	t.Parallel()

	fb := New("tick.mcfunction")
	_, err := fb.Write([]byte("say one\nsay two\n"))
	require.NoError(t, err)
	_, err = fb.Write([]byte("say three"))
	require.NoError(t, err)

	require.Equal(t, 3, fb.NumLines())

	line, err := fb.Line(0)
	require.NoError(t, err)
	require.Equal(t, "say one", line)

	line, err = fb.Line(2)
	require.NoError(t, err)
	require.Equal(t, "say three", line)

	_, err = fb.Line(3)
	require.Error(t, err)

	pos := fb.Position(1, 4)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 5, pos.Column)
	require.Equal(t, 12, pos.Offset)

	require.Equal(t, 1, fb.LineAt(12))
}

func TestSources(t *testing.T) {
	t.Parallel()

	s := NewSources()
	fb := New("a.mcfunction")
	s.Set(fb.Filename(), fb)
	require.Same(t, fb, s.Get("a.mcfunction"))

	s.Delete("a.mcfunction")
	require.Nil(t, s.Get("a.mcfunction"))
}
