package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"CS 150: Introduction to Programming. Variables, loops and functions.",
	"CS 210: Data Structures. Lists, trees and graphs.",
	"Ada Lovelace is a professor in the Computer Science department.",
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestEmbed_RequiresPrepare(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "graphs")
	assert.Error(t, err)
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(context.Background(), nil))
	assert.Error(t, NewEmbedder().Prepare(context.Background(), []string{"the and of"}))
}

func TestEmbed_NormalizedAndRanked(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))
	assert.True(t, e.Prepared())
	assert.Positive(t, e.Dimension())

	q, err := e.Embed(ctx, "trees and graphs")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(q), 1e-9)

	scores := make([]float64, len(corpus))
	for i, doc := range corpus {
		v, err := e.Embed(ctx, doc)
		require.NoError(t, err)
		assert.Len(t, v, e.Dimension())
		scores[i] = dot(q, v)
	}
	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])
}

func TestEmbed_UnknownTermsGiveZeroVector(t *testing.T) {
	ctx := context.Background()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(ctx, corpus))
	v, err := e.Embed(ctx, "quantum chromodynamics")
	require.NoError(t, err)
	assert.Zero(t, norm(v))
}

func TestTokens_KeepsNumbersDropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"cs", "150", "programming"}, NewEmbedder().Tokens("What is CS 150 about? The programming"))
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEmbedder()
	assert.ErrorIs(t, e.Prepare(ctx, corpus), context.Canceled)
}
