package linker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/nftmeta/internal/codec"
	"github.com/mesh-intelligence/nftmeta/internal/scene"
	"github.com/mesh-intelligence/nftmeta/internal/testutil/testlog"
	"github.com/mesh-intelligence/nftmeta/pkg/types"
)

// stream creates objects in staging the way a host does during import and
// reports each one to the linker.
func stream(t *testing.T, s *scene.Scene, lk *Linker, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := s.AddObject(name, scene.KindMesh)
		require.NoError(t, err)
		lk.Observe(name)
	}
}

func TestLinkNoDuplication(t *testing.T) {
	s := scene.New()
	require.NoError(t, s.CreateCollection("A"))
	require.NoError(t, s.CreateCollection("B"))
	lk := New(s, WithLogger(testlog.Start(t)))
	stream(t, s, lk, "X", "Y")

	report, err := lk.Link([]codec.LinkRequest{
		{ContainerID: "a", Collection: "A", Objects: []string{"X", "X"}},
		{ContainerID: "b", Collection: "B", Objects: []string{"X", "Y"}},
	})
	require.NoError(t, err)
	require.NoError(t, lk.Cleanup())

	assert.Equal(t, []string{"A"}, s.ObjectCollections("X"))
	assert.Equal(t, []string{"B"}, s.ObjectCollections("Y"))
	assert.Empty(t, s.CollectionObjects(types.StagingCollection))
	assert.Equal(t, []Duplicate{{Collection: "B", Object: "X", LinkedTo: "A"}}, report.Duplicates)
	assert.Equal(t, 2, report.LinkedCount())

	st, _ := lk.State("X")
	assert.Equal(t, Linked, st)
}

func TestLinkStates(t *testing.T) {
	s := scene.New()
	require.NoError(t, s.CreateCollection("Hats"))
	lk := New(s, WithLogger(testlog.Start(t)))
	lk.Expect("Hat", "Ghost")

	st, ok := lk.State("Hat")
	require.True(t, ok)
	assert.Equal(t, Pending, st)

	stream(t, s, lk, "Hat", "Lamp")
	st, _ = lk.State("Hat")
	assert.Equal(t, Created, st)

	report, err := lk.Link([]codec.LinkRequest{{Collection: "Hats", Objects: []string{"Hat", "Ghost"}}})
	require.NoError(t, err)

	for name, want := range map[string]State{"Hat": Linked, "Lamp": Unlinked, "Ghost": Pending} {
		got, _ := lk.State(name)
		assert.Equal(t, want, got, name)
	}
	assert.Equal(t, []string{"Lamp"}, report.Unlinked)
	assert.Equal(t, []Unresolved{{Collection: "Hats", Object: "Ghost"}}, report.Unresolved)

	require.NoError(t, lk.Cleanup())
	assert.Equal(t, []string{"Lamp"}, s.CollectionObjects(types.StagingCollection), "unlinked objects stay where the host put them")
}

func TestLinkResolvesByID(t *testing.T) {
	s := scene.New()
	require.NoError(t, s.CreateCollection("Hats"))
	lk := New(s, WithLogger(testlog.Start(t)))

	// The host renamed the object on creation; only the id still matches.
	stream(t, s, lk, "Hat.001")
	require.NoError(t, s.SetObjectID("Hat.001", "h1"))

	report, err := lk.Link([]codec.LinkRequest{{Collection: "Hats", Objects: []string{"Hat"}, ObjectIDs: []string{"h1"}}})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"Hats": {"Hat.001"}}, report.Linked)
	assert.Empty(t, report.Unresolved)
}

func TestLinkIgnoresUnobservedObjects(t *testing.T) {
	s := scene.New()
	require.NoError(t, s.CreateCollection("Hats"))
	_, err := s.AddObject("Hat", scene.KindMesh)
	require.NoError(t, err)
	lk := New(s, WithLogger(testlog.Start(t)))

	report, err := lk.Link([]codec.LinkRequest{{Collection: "Hats", Objects: []string{"Hat"}}})
	require.NoError(t, err)
	assert.Empty(t, report.Linked)
	assert.Len(t, report.Unresolved, 1)
	assert.Empty(t, s.CollectionObjects("Hats"))
}

func TestLinkMissingCollection(t *testing.T) {
	s := scene.New()
	lk := New(s, WithLogger(testlog.Start(t)))
	stream(t, s, lk, "Hat")

	report, err := lk.Link([]codec.LinkRequest{
		{Collection: "Nowhere", Objects: []string{"Hat"}, ObjectIDs: []string{"h1"}},
		{Collection: types.StagingCollection, Objects: []string{"Hat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []Unresolved{{Collection: "Nowhere", Object: "Hat", ID: "h1"}}, report.Unresolved)
	assert.Equal(t, []string{"Hat"}, report.Unlinked)
}

func TestPassOrdering(t *testing.T) {
	s := scene.New()
	lk := New(s, WithLogger(testlog.Start(t)))
	assert.NotEmpty(t, lk.Pass())

	assert.ErrorIs(t, lk.Cleanup(), ErrNotLinked)
	_, err := lk.Link(nil)
	require.NoError(t, err)
	_, err = lk.Link(nil)
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	require.NoError(t, lk.Cleanup())
	require.NoError(t, lk.Cleanup())
}

func TestReportIsACopy(t *testing.T) {
	s := scene.New()
	require.NoError(t, s.CreateCollection("Hats"))
	lk := New(s, WithLogger(testlog.Start(t)))
	stream(t, s, lk, "Hat")
	_, err := lk.Link([]codec.LinkRequest{{Collection: "Hats", Objects: []string{"Hat"}}})
	require.NoError(t, err)

	r := lk.Report()
	r.Linked["Hats"][0] = "changed"
	assert.Equal(t, []string{"Hat"}, lk.Report().Linked["Hats"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "linked", Linked.String())
	assert.Equal(t, "State(9)", State(9).String())
}
