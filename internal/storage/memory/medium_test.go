package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/red-syndicate/internal/storage"
)

func TestMedium_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := New()

	_, err := m.Get(ctx, "casino_users")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, m.Set(ctx, "casino_users", []byte(`[]`)))
	got, err := m.Get(ctx, "casino_users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got[0] = 'x'
	again, err := m.Get(ctx, "casino_users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(again), "stored value must not alias caller slices")

	require.NoError(t, m.Delete(ctx, "casino_users"))
	require.NoError(t, m.Delete(ctx, "casino_users"))
	_, err = m.Get(ctx, "casino_users")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
