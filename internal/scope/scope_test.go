package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartCancelsPreviousTaskUnderKey(t *testing.T) {
	s := New(context.Background())
	first, tok1 := s.Start("list")
	second, tok2 := s.Start("list")

	require.ErrorIs(t, first.Err(), context.Canceled)
	require.NoError(t, second.Err())
	require.False(t, s.Finish(tok1), "stale result must be discarded")
	require.True(t, s.Pending("list"))
	require.True(t, s.Finish(tok2))
	require.False(t, s.Pending("list"))
	require.ErrorIs(t, second.Err(), context.Canceled)
}

func TestKeysAreIndependent(t *testing.T) {
	s := New(context.Background())
	listCtx, listTok := s.Start("list")
	statsCtx, statsTok := s.Start("stats")

	require.NoError(t, listCtx.Err())
	require.NoError(t, statsCtx.Err())
	require.True(t, s.Finish(statsTok))
	require.True(t, s.Pending("list"))
	require.True(t, s.Finish(listTok))
}

func TestCloseCancelsEverything(t *testing.T) {
	s := New(context.Background())
	a, tokA := s.Start("a")
	b, _ := s.Start("b")
	s.Close()
	s.Close()

	require.Error(t, a.Err())
	require.Error(t, b.Err())
	require.False(t, s.Finish(tokA))
	require.False(t, s.Pending("b"))

	late, tok := s.Start("a")
	require.Error(t, late.Err())
	require.False(t, s.Finish(tok))
}

func TestCancelKey(t *testing.T) {
	s := New(context.TODO())
	ctx, tok := s.Start("delete")
	s.Cancel("delete")
	require.Error(t, ctx.Err())
	require.False(t, s.Finish(tok))
}
