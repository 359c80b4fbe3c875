package panel

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidtracking.org/statecards/internal/definitions"
)

type recordedOpen struct {
	pageID   string
	query    definitions.Query
	repeated bool
}

type recordingObserver struct {
	mu    sync.Mutex
	opens []recordedOpen
}

func (o *recordingObserver) PanelOpened(pageID string, q definitions.Query, repeated bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens = append(o.opens, recordedOpen{pageID: pageID, query: q, repeated: repeated})
}

func TestControllerOpenReplacesQuery(t *testing.T) {
	t.Parallel()

	c := NewController()
	_, ok := c.Current()
	require.False(t, ok)
	require.False(t, c.State().Open())

	cases := definitions.MustResolve(definitions.KindCases, definitions.SubstatTotal, definitions.Modifiers{})
	tests := definitions.MustResolve(definitions.KindTests, definitions.SubstatNegative, definitions.Modifiers{})

	c.Open(cases)
	c.Open(tests)

	got, ok := c.Current()
	require.True(t, ok)
	require.True(t, got.Equal(tests))
}

func TestControllerOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := NewController(WithObserver(obs), WithID("page-1"))
	q := definitions.MustResolve(definitions.KindOutcomes, definitions.SubstatDeath, definitions.Modifiers{DeathProbable: true})
	again, err := definitions.NewQuery(q.Fields(), q.Highlight())
	require.NoError(t, err)

	c.Open(q)
	first := c.State()
	require.True(t, first.Open())
	require.True(t, first.Current.Equal(q))

	c.Open(again)
	second := c.State()
	require.True(t, second.Open(), "opening twice must not toggle the panel closed")
	require.True(t, second.Current.Equal(q))
	require.Equal(t, first, second)

	require.Len(t, obs.opens, 2)
	assert.False(t, obs.opens[0].repeated)
	assert.True(t, obs.opens[1].repeated)
	assert.Equal(t, "page-1", obs.opens[1].pageID)
}

func TestControllerDismissAndTeardown(t *testing.T) {
	t.Parallel()

	c := NewController()
	q := definitions.MustResolve(definitions.KindCases, "", definitions.Modifiers{})

	c.Open(q)
	c.Dismiss()
	_, ok := c.Current()
	require.False(t, ok)

	c.Open(q)
	c.Teardown()
	require.False(t, c.Mounted())
	c.Open(q)
	_, ok = c.Current()
	require.False(t, ok, "torn down controller ignores Open")
}

func TestControllerStateIsSnapshot(t *testing.T) {
	t.Parallel()

	c := NewController()
	q := definitions.MustResolve(definitions.KindCases, "", definitions.Modifiers{})
	c.Open(q)
	s := c.State()
	c.Dismiss()
	require.NotNil(t, s.Current)
	require.True(t, s.Current.Equal(q))
}

func TestControllerGeneratesULID(t *testing.T) {
	t.Parallel()

	at := time.Date(2021, 3, 7, 12, 0, 0, 0, time.UTC)
	c := NewController(WithClock(func() time.Time { return at }))
	id, err := ulid.ParseStrict(c.ID())
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(at), id.Time())
	require.NotEqual(t, c.ID(), NewController().ID())
}

func TestControllerIgnoresZeroQuery(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	c := NewController(WithObserver(obs))
	c.Open(definitions.Query{})
	require.False(t, c.State().Open())

	q := definitions.MustResolve(definitions.KindCases, "", definitions.Modifiers{})
	c.Open(q)
	c.Open(definitions.Query{})
	got, ok := c.Current()
	require.True(t, ok)
	require.True(t, got.Equal(q))
	require.Len(t, obs.opens, 1)
}
