package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	Name  string   `json:"name"`
	Turns []string `json:"turns"`
}

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	_, ok, err := a.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Set(ctx, "b", json.RawMessage(`2`)))
	require.NoError(t, a.Set(ctx, "a", json.RawMessage(`1`)))

	keys, err := a.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	v, ok, err := a.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	v[0] = '9'
	again, _, _ := a.Get(ctx, "a")
	assert.Equal(t, json.RawMessage(`1`), again, "stored values are copied")

	require.NoError(t, a.Delete(ctx, "a"))
	require.NoError(t, a.Delete(ctx, "a"))
	keys, _ = a.Keys(ctx)
	assert.Equal(t, []string{"b"}, keys)
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	want := session{Name: "dice", Turns: []string{"roll", "7"}}
	require.NoError(t, Save(ctx, a, "s1", want))

	got, err := Load[session](ctx, a, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Load[session](ctx, a, "s2")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, a.Set(ctx, "bad", json.RawMessage(`"not an object"`)))
	_, err = Load[session](ctx, a, "bad")
	var cerr *CodecError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "bad", cerr.Key)
	assert.Equal(t, "decode", cerr.Op)

	err = Save(ctx, a, "chan", make(chan int))
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "encode", cerr.Op)
}
