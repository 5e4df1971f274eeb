package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mantic/internal/types"
)

func TestStartAndLoadByID(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	s, err := m.Start("fix-auth", types.IntentAuth)
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, s.Meta.Status)

	loaded, err := m.Load(s.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Meta.ID, loaded.Meta.ID)
}

func TestLoadByActiveName(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)
	_, err := m.Start("fix-auth", types.IntentAuth)
	require.NoError(t, err)

	m2 := NewManager(root)
	loaded, err := m2.Load("fix-auth")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "fix-auth", loaded.Meta.Name)
}

func TestLoadMissingReturnsNilNil(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Load("does-not-exist")
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestRecordQueryBumpsCount(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)

	require.NoError(t, m.RecordQuery("login bug", []string{"a.ts"}))
	require.NoError(t, m.RecordQuery("login redirect", []string{"b.ts"}))

	loaded, err := m.Load("s")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Meta.QueryCount)
	assert.Len(t, loaded.History, 2)
}

func TestRecordFileViewsMonotonicViewCount(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)

	views := map[string]types.ScoredFile{"a.ts": {Path: "a.ts", Score: 90}}
	require.NoError(t, m.RecordFileViews(views))
	require.NoError(t, m.RecordFileViews(views))

	candidates := m.GetBoostCandidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, 20.0+20.0, candidates[0].BoostFactor) // 2 views * 10 + recent-view bonus
}

func TestBoostCandidateCapped(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)

	views := map[string]types.ScoredFile{"a.ts": {Path: "a.ts", Score: 90}}
	for i := 0; i < 10; i++ {
		require.NoError(t, m.RecordFileViews(views))
	}

	candidates := m.GetBoostCandidates()
	require.Len(t, candidates, 1)
	assert.LessOrEqual(t, candidates[0].BoostFactor, 50.0+20.0)
}

func TestEndFlipsStatus(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)
	require.NoError(t, m.End())

	loaded, err := m.Load(s.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionEnded, loaded.Meta.Status)
}

func TestListOrdersByLastActiveDescending(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)

	_, err := m.Start("first", types.IntentGeneral)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = m.Start("second", types.IntentGeneral)
	require.NoError(t, err)

	metas, err := m.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "second", metas[0].Name)
}

func TestDeleteRemovesSession(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.Meta.ID))

	loaded, err := m.Load(s.Meta.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionIDFormat(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Start("s", types.IntentGeneral)
	require.NoError(t, err)
	assert.Regexp(t, `^session-\d+-[a-z0-9]{6}$`, s.Meta.ID)
}
