package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/cdm-contract/cdm"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	id := ID{Label: "testnet", Block: 42}
	require.Equal(t, "testnet-42", id.String())

	var res ID
	require.NoError(t, res.decodeString(id.String()+"-state.json"))
	require.Equal(t, id, res)

	require.Error(t, res.decodeString("testnet"))
	require.Error(t, res.decodeString("testnet-block"))
}

func TestCreatorReader(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "mainnet", Block: 100}

	st := State{
		Contract:  util.Uint160{1},
		Owner:     util.Uint160{2},
		Providers: []util.Uint160{{3}, {4}, {3}},
	}
	msgs := []cdm.Message{
		{Object1ID: 1, Object2ID: 2, CollisionProbability: 3, TimeOfClosestPass: 4},
		{Object1ID: -1, Object2ID: 0, CollisionProbability: 2147483647, TimeOfClosestPass: -2147483648},
	}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)
	c.SetState(st)
	for i := range msgs {
		require.NoError(t, c.WriteMessage(msgs[i]))
	}
	require.NoError(t, c.Flush())
	c.Close()

	require.FileExists(t, filepath.Join(dir, "mainnet-100-state.json"))
	require.FileExists(t, filepath.Join(dir, "mainnet-100-messages.csv"))

	_, err = NewCreator(dir, id)
	require.ErrorIs(t, err, os.ErrExist)

	var n int
	err = IterateDumps(dir, func(resID ID, r *Reader) {
		n++
		require.Equal(t, id, resID)
		require.Equal(t, st, r.State())
		require.Equal(t, len(msgs), r.MessageCount())

		var got []cdm.Message
		r.IterateMessages(func(i int, m cdm.Message) {
			require.Equal(t, len(got), i)
			got = append(got, m)
		})
		require.Equal(t, msgs, got)
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCreator_EmptyState(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "empty", Block: 1}

	c, err := NewCreator(dir, id)
	require.NoError(t, err)
	c.SetState(State{Owner: util.Uint160{1}})
	require.NoError(t, c.Flush())
	c.Close()

	err = IterateDumps(dir, func(_ ID, r *Reader) {
		require.NotNil(t, r.State().Providers)
		require.Empty(t, r.State().Providers)
		require.Zero(t, r.MessageCount())
	})
	require.NoError(t, err)
}

func TestIterateDumps(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		err := IterateDumps(filepath.Join(t.TempDir(), "missing"), func(ID, *Reader) {
			t.Fatal("unexpected dump")
		})
		require.NoError(t, err)
	})

	t.Run("invalid messages", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-1-state.json"), []byte(`{}`), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-1-messages.csv"), []byte("1,2,3\n"), 0600))

		require.Error(t, IterateDumps(dir, func(ID, *Reader) {}))
	})

	t.Run("out of range field", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-1-state.json"), []byte(`{}`), 0600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-1-messages.csv"), []byte("1,2,3,2147483648\n"), 0600))

		require.Error(t, IterateDumps(dir, func(ID, *Reader) {}))
	})
}
