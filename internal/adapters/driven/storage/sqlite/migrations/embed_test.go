package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_Embedded(t *testing.T) {
	all, err := Pending(FS, 0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Contains(t, all[0].Script, "kv_entries")

	none, err := Pending(FS, all[len(all)-1].Version)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPending_OrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("B")},
		"002_second.up.sql":   {Data: []byte("A")},
		"002_second.down.sql": {Data: []byte("undo")},
		"001_first.up.sql":    {Data: []byte("old")},
		"notes.up.sql":        {Data: []byte("x")},
	}

	got, err := Pending(fsys, 1)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Migration{Version: 2, Name: "002_second.up.sql", Script: "A"}, got[0])
	assert.Equal(t, 10, got[1].Version)
}
