package serial_test

import (
	"slices"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/jsonapi/serial"
)

func TestSerializeLazy_on_demand(t *testing.T) {
	t.Parallel()

	var calls int
	reg := serial.NewRegistry()
	serial.Register(reg, "", func(b book, _ serial.Kwargs) (serial.Map, error) {
		calls++
		return serial.Map{"id": b.ID}, nil
	})

	cur := serial.SerializeLazy(reg, slices.Values([]book{{ID: 1}, {ID: 2}, {ID: 3}}), "", nil)
	t.Cleanup(cur.Stop)

	assert.Equal(t, 0, calls)

	require.True(t, cur.Next())
	assert.Equal(t, serial.Map{"id": 1}, cur.Value())
	assert.Equal(t, 1, calls)

	var rest []serial.Map
	for m, err := range cur.All() {
		require.NoError(t, err)
		rest = append(rest, m)
	}
	assert.Equal(t, []serial.Map{{"id": 2}, {"id": 3}}, rest)

	assert.False(t, cur.Next(), "cursor is single-pass")
	assert.NoError(t, cur.Err())
	assert.Equal(t, 3, calls)
}

func TestSerializeLazy_stops_on_error(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	items := slices.Values([]any{book{ID: 1}, "nope", book{ID: 3}})

	cur := serial.SerializeLazy(reg, items, "", nil)

	require.True(t, cur.Next())
	assert.False(t, cur.Next())
	assert.True(t, errors.Is(cur.Err(), serial.ErrNoSerializer))
	assert.False(t, cur.Next())
}

func TestSerializeLazy_Stop(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	cur := serial.SerializeLazy(reg, slices.Values([]book{{ID: 1}, {ID: 2}}), "", nil)

	require.True(t, cur.Next())
	cur.Stop()
	assert.False(t, cur.Next())
	assert.Nil(t, cur.Value())
}

func TestSerializeLazy_All_break(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	cur := serial.SerializeLazy(reg, slices.Values([]book{{ID: 1}, {ID: 2}}), "", nil)

	for m, err := range cur.All() {
		require.NoError(t, err)
		assert.Equal(t, serial.Map{"id": 1}, m)
		break
	}
	assert.False(t, cur.Next())
}
