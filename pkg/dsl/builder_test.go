package dsl

import (
	"testing"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()

	b.Add("start").
		Question("Pain?").
		Go("Yes", "where").
		Close("No", "Glad to hear it")

	b.Add("where").
		Question("Chest?").
		Recommend("Yes", domain.Cardiology, "See a cardiologist").
		Go("No", "end")

	b.Add("end").
		Terminal("Bye")

	tree, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "start", tree.Start)
	assert.Equal(t, 3, tree.Len())

	start, err := tree.Node("start")
	require.NoError(t, err)
	assert.Equal(t, "Pain?", start.Prompt)
	assert.Equal(t, []string{"Yes", "No"}, start.Options())

	tr, ok := start.Transition("Yes")
	require.True(t, ok)
	assert.Equal(t, domain.TransitionNext, tr.Kind())
	assert.Equal(t, "where", tr.Target())

	where, err := tree.Node("where")
	require.NoError(t, err)
	tr, _ = where.Transition("Yes")
	assert.Equal(t, domain.Cardiology, tr.Recommendation().Specialization)

	end, err := tree.Node("end")
	require.NoError(t, err)
	assert.True(t, end.IsTerminal())
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New()
	b.Add("start").Question("first")
	b.Add("start").Close("Ok", "bye")

	nodes := b.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "first", nodes[0].Prompt)
	assert.Len(t, nodes[0].Choices, 1)
}

func TestBuilder_ExplicitStart(t *testing.T) {
	b := New().Start("root")
	b.Add("leaf").Terminal("bye")
	b.Add("root").Question("?").Go("Go", "leaf").Meta("source", "test")

	tree, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "root", tree.Start)

	root, _ := tree.Node("root")
	assert.Equal(t, "test", root.Metadata["source"])
}

func TestBuilder_RejectsDanglingTarget(t *testing.T) {
	b := New()
	b.Add("start").Question("?").Go("Yes", "ghost")

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrUnknownTransitionTarget)
	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_BuildLoader(t *testing.T) {
	b := New()
	b.Add("start").Question("?").Close("Ok", "bye")

	loader, err := b.BuildLoader()
	require.NoError(t, err)

	ids, err := loader.ListNodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"start"}, ids)
}
