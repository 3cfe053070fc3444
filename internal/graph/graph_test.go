package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addSteps(t *testing.T, g *Graph, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, g.AddStep(Index(i)))
	}
}

func TestAddStep(t *testing.T) {
	t.Run("accepts only the next sequential index", func(t *testing.T) {
		g := New(ModeEager)
		require.NoError(t, g.AddStep(0))
		require.NoError(t, g.AddStep(1))
		assert.Equal(t, 2, g.StepCount())
	})

	t.Run("rejects duplicates without mutating", func(t *testing.T) {
		g := New(ModeEager)
		require.NoError(t, g.AddStep(0))

		err := g.AddStep(0)
		assert.True(t, IsKind(err, KindDuplicate), "got %v", err)
		assert.Equal(t, 1, g.StepCount())
	})

	t.Run("rejects out-of-sequence without mutating", func(t *testing.T) {
		g := New(ModeEager)
		err := g.AddStep(3)
		assert.True(t, IsKind(err, KindOutOfSequence), "got %v", err)
		assert.Equal(t, 0, g.StepCount())

		err = g.AddStep(-1)
		assert.True(t, IsKind(err, KindInvalidIndex), "got %v", err)
	})
}

func TestAddField(t *testing.T) {
	t.Run("records ownership, type and usage", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))

		assert.Equal(t, 2, g.FieldCount())
		owner, err := g.Owner(1)
		require.NoError(t, err)
		assert.Equal(t, Index(1), owner)
		usage, err := g.UsageOf(0)
		require.NoError(t, err)
		assert.Equal(t, UsageCreate, usage)
		tag, err := g.TypeOf(1)
		require.NoError(t, err)
		assert.Equal(t, TypeTag("blob"), tag)

		fields, err := g.FieldsOf(0)
		require.NoError(t, err)
		assert.Equal(t, []Index{0}, fields)
	})

	t.Run("rejects non-existent step", func(t *testing.T) {
		g := New(ModeEager)
		err := g.AddField(0, 0, "blob", UsageCreate)
		assert.True(t, IsKind(err, KindInvalidIndex), "got %v", err)
		assert.Equal(t, 0, g.FieldCount())
	})

	t.Run("enforces dense field sequence", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 1)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))

		err := g.AddField(0, 0, "blob", UsageRead)
		assert.True(t, IsKind(err, KindDuplicate), "got %v", err)
		err = g.AddField(0, 2, "blob", UsageRead)
		assert.True(t, IsKind(err, KindOutOfSequence), "got %v", err)
		assert.Equal(t, 1, g.FieldCount())
	})

	t.Run("rejects unknown usage", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 1)
		err := g.AddField(0, 0, "blob", Usage(9))
		assert.True(t, IsKind(err, KindUsageViolation), "got %v", err)
	})
}

func TestLinkSteps(t *testing.T) {
	t.Run("self-loop rejected in any mode", func(t *testing.T) {
		for _, mode := range []Mode{ModeEager, ModeLazy} {
			g := New(mode)
			addSteps(t, g, 1)
			err := g.LinkSteps(0, 0, TrustMiddle)
			assert.True(t, IsKind(err, KindCycle), "mode %v: got %v", mode, err)
			assert.Empty(t, g.StepLinks())
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 1)
		err := g.LinkSteps(0, 5, TrustMiddle)
		assert.True(t, IsKind(err, KindInvalidIndex), "got %v", err)
	})

	t.Run("eager mode rejects closing edge, state untouched", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 3)
		require.NoError(t, g.LinkSteps(0, 1, TrustMiddle))
		require.NoError(t, g.LinkSteps(1, 2, TrustMiddle))

		err := g.LinkSteps(2, 0, TrustMiddle)
		assert.True(t, IsKind(err, KindCycle), "got %v", err)
		assert.Len(t, g.StepLinks(), 2)
	})

	t.Run("lazy mode commits the same edge", func(t *testing.T) {
		g := New(ModeLazy)
		addSteps(t, g, 2)
		require.NoError(t, g.LinkSteps(0, 1, TrustMiddle))
		require.NoError(t, g.LinkSteps(1, 0, TrustMiddle))
		assert.Len(t, g.StepLinks(), 2)
	})
}

func TestLinkFields(t *testing.T) {
	t.Run("self-link is a no-op", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 1)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.LinkFields(0, 0, TrustMiddle))
		assert.Empty(t, g.FieldLinks())
	})

	t.Run("type mismatch rejected in any mode", func(t *testing.T) {
		for _, mode := range []Mode{ModeEager, ModeLazy} {
			g := New(mode)
			addSteps(t, g, 2)
			require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
			require.NoError(t, g.AddField(1, 1, "text", UsageRead))

			err := g.LinkFields(0, 1, TrustMiddle)
			assert.True(t, IsKind(err, KindTypeMismatch), "mode %v: got %v", mode, err)
			assert.Empty(t, g.FieldLinks())
		}
	})

	t.Run("merges classes and derives order", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))

		same, err := g.SameDatum(0, 1)
		require.NoError(t, err)
		assert.True(t, same)
		assert.Equal(t, []Edge{{Before: 0, After: 1}}, g.ImplicitLinks())
	})

	t.Run("redundant link recorded without structural work", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.LinkFields(0, 1, TrustHigh))
		require.NoError(t, g.LinkFields(1, 0, TrustLow))

		links := g.FieldLinks()
		require.Len(t, links, 2)
		assert.False(t, links[0].Redundant)
		assert.True(t, links[1].Redundant)
	})

	t.Run("eager mode rejects second create", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageCreate))

		err := g.LinkFields(0, 1, TrustMiddle)
		assert.True(t, IsKind(err, KindUsageViolation), "got %v", err)
		assert.Empty(t, g.FieldLinks())
		same, serr := g.SameDatum(0, 1)
		require.NoError(t, serr)
		assert.False(t, same, "rejected merge must not unite classes")
	})

	t.Run("eager mode rejects self-aliasing merge", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 1)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(0, 1, "blob", UsageDestroy))

		err := g.LinkFields(0, 1, TrustMiddle)
		assert.True(t, IsKind(err, KindUsageViolation), "got %v", err)
	})

	t.Run("same-step repeated reads allowed", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.AddField(1, 2, "blob", UsageRead))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))
		require.NoError(t, g.LinkFields(0, 2, TrustMiddle))

		same, err := g.SameDatum(1, 2)
		require.NoError(t, err)
		assert.True(t, same)
	})

	t.Run("eager mode rejects merge that contradicts explicit order", func(t *testing.T) {
		// Explicit: reader before creator. Merging the fields would imply
		// creator before reader, closing a cycle.
		g := New(ModeEager)
		addSteps(t, g, 2)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.LinkSteps(1, 0, TrustMiddle))

		err := g.LinkFields(0, 1, TrustMiddle)
		assert.True(t, IsKind(err, KindCycle), "got %v", err)
		assert.Empty(t, g.FieldLinks())
		same, serr := g.SameDatum(0, 1)
		require.NoError(t, serr)
		assert.False(t, same)
	})

	t.Run("eager merge then contradicting explicit link rejected", func(t *testing.T) {
		// Create -> Read -> Destroy across three steps, then an explicit
		// link from the destroyer back to the creator must be refused.
		g := New(ModeEager)
		addSteps(t, g, 3)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.AddField(2, 2, "blob", UsageDestroy))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))
		require.NoError(t, g.LinkFields(1, 2, TrustMiddle))

		err := g.LinkSteps(2, 0, TrustMiddle)
		assert.True(t, IsKind(err, KindCycle), "got %v", err)
		assert.Empty(t, g.StepLinks())
	})
}

func TestImplicitLinks(t *testing.T) {
	t.Run("full create-read-destroy chain", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 3)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.AddField(2, 2, "blob", UsageDestroy))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))
		require.NoError(t, g.LinkFields(1, 2, TrustMiddle))

		assert.ElementsMatch(t, []Edge{
			{Before: 0, After: 1},
			{Before: 0, After: 2},
			{Before: 1, After: 2},
		}, g.ImplicitLinks())
	})

	t.Run("equal usages imply nothing", func(t *testing.T) {
		g := New(ModeEager)
		addSteps(t, g, 3)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.AddField(2, 2, "blob", UsageRead))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))
		require.NoError(t, g.LinkFields(0, 2, TrustMiddle))

		assert.ElementsMatch(t, []Edge{
			{Before: 0, After: 1},
			{Before: 0, After: 2},
		}, g.ImplicitLinks())
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		g := New(ModeLazy)
		addSteps(t, g, 4)
		require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
		require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
		require.NoError(t, g.AddField(2, 2, "blob", UsageRead))
		require.NoError(t, g.AddField(3, 3, "blob", UsageDestroy))
		require.NoError(t, g.LinkFields(0, 1, TrustMiddle))
		require.NoError(t, g.LinkFields(2, 3, TrustMiddle))
		require.NoError(t, g.LinkFields(1, 2, TrustMiddle))

		first := g.ImplicitLinks()
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, g.ImplicitLinks())
		}
	})
}

func TestClasses(t *testing.T) {
	g := New(ModeLazy)
	addSteps(t, g, 3)
	require.NoError(t, g.AddField(0, 0, "a", UsageCreate))
	require.NoError(t, g.AddField(1, 1, "b", UsageCreate))
	require.NoError(t, g.AddField(2, 2, "a", UsageRead))
	require.NoError(t, g.LinkFields(2, 0, TrustMiddle))

	classes := g.Classes()
	require.Len(t, classes, 2)
	// First-seen order: field 0's class first, then field 1's.
	assert.Equal(t, []Index{0, 2}, classes[0])
	assert.Equal(t, []Index{1}, classes[1])
}

func TestClassMembers(t *testing.T) {
	g := New(ModeLazy)
	addSteps(t, g, 3)
	require.NoError(t, g.AddField(0, 0, "blob", UsageCreate))
	require.NoError(t, g.AddField(1, 1, "blob", UsageRead))
	require.NoError(t, g.AddField(2, 2, "blob", UsageRead))
	require.NoError(t, g.LinkFields(0, 1, TrustMiddle))

	members, err := g.ClassMembers(1, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Index{0, 1}, members)

	members, err = g.ClassMembers(2, nil)
	require.NoError(t, err)
	assert.Equal(t, []Index{2}, members)
}
