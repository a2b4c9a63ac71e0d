package qfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaColumns(t *testing.T) {
	s := MustSchema("things",
		Field("VoteCount", Int16(), func(f film) any { return f.Votes }),
		Field("Title", Text(), func(f film) any { return f.Title }).WithColumn("Title"),
	)
	vc, ok := s.Lookup("votecount")
	require.True(t, ok)
	assert.Equal(t, "vote_count", vc.Column)

	title, ok := s.Lookup("TITLE")
	require.True(t, ok)
	assert.Equal(t, "Title", title.Column)

	raw, err := NewSchemaWithNaming("raw", NAMING_STRATEGY_NO_CHANGE,
		Field("VoteCount", Int16(), func(f film) any { return f.Votes }))
	require.NoError(t, err)
	vc, _ = raw.Lookup("VoteCount")
	assert.Equal(t, "VoteCount", vc.Column)
}

func TestNewSchemaValidation(t *testing.T) {
	get := func(f film) any { return f.Title }

	_, err := NewSchema("empty")
	assert.Error(t, err)

	_, err = NewSchema("dup", Field("Title", Text(), get), Field("title", Text(), get))
	assert.Error(t, err)

	_, err = NewSchema("enum", Field("Genre", Enum(), get))
	assert.Error(t, err)

	_, err = NewSchema("nested", FieldDescriptor{Name: "Studio", Type: Record(), Get: Field("x", Text(), get).Get})
	assert.Error(t, err)

	_, err = NewSchema("getter", FieldDescriptor{Name: "Title", Type: Text()})
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	p, err := ResolvePath("studio.NAME", filmSchema)
	require.NoError(t, err)
	require.Len(t, p, 2)
	assert.Equal(t, "Studio.Name", p.String())
	assert.Equal(t, []string{"studio", "name"}, p.Columns())
	assert.Equal(t, KindText, p.Leaf().Type.Kind)

	_, err = ResolvePath("studio.budget", filmSchema)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ResolvePath("title.length", filmSchema)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ResolvePath("director", filmSchema)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFieldPathAppend(t *testing.T) {
	root, err := FieldPath(nil).Append("Studio", filmSchema)
	require.NoError(t, err)

	a, err := root.Append("name", filmSchema)
	require.NoError(t, err)
	b, err := root.Append("country", filmSchema)
	require.NoError(t, err)

	assert.Equal(t, "Studio.Name", a.String())
	assert.Equal(t, "Studio.Country", b.String())
	assert.Len(t, root, 1, "appending must not modify the receiver")
}

func TestFieldPathValue(t *testing.T) {
	data := films()
	p, err := ResolvePath("Studio.Country", filmSchema)
	require.NoError(t, err)

	v, present, err := p.Value(data[0])
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "JP", *(v.(*string)))

	_, present, err = p.Value(data[2])
	require.NoError(t, err)
	assert.False(t, present, "nil country")

	_, present, err = p.Value(&data[3])
	require.NoError(t, err)
	assert.False(t, present, "nil studio")

	_, _, err = p.Value(studio{})
	assert.ErrorIs(t, err, ErrRecordType)
}
