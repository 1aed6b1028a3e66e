// Package fallback fills in a preview asset from the secondary provider when
// the primary match has none.
package fallback

import (
	"context"

	"go.uber.org/zap"

	"hitstertrainer/internal/core"
	"hitstertrainer/internal/match"
)

// Chain resolves missing previews through a secondary provider. Failures of
// the secondary provider are logged and never reach the caller.
type Chain struct {
	secondary core.PreviewSearcher
	logger    *zap.Logger
}

func NewChain(secondary core.PreviewSearcher, logger *zap.Logger) *Chain {
	return &Chain{
		secondary: secondary,
		logger:    logger,
	}
}

// ResolvePreview returns m unchanged when it already has a primary preview.
// Otherwise it searches the secondary provider once for "{artist} {title}"
// and takes the preview of the first result whose artist and title both match.
func (c *Chain) ResolvePreview(ctx context.Context, m core.MatchResult, artist, title string) core.MatchResult {
	if m.PreviewURL != "" || c.secondary == nil {
		return m
	}

	query := artist + " " + title
	candidates, err := c.secondary.SearchTracks(ctx, query)
	if err != nil {
		c.logger.Debug("Secondary preview search failed",
			zap.String("query", query),
			zap.Error(err))
		return m
	}

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.PreviewURL == "" {
			continue
		}
		if !match.TextMatches(candidate.ArtistName, artist) || !match.TextMatches(candidate.Name, title) {
			continue
		}

		c.logger.Debug("Secondary preview found",
			zap.String("query", query),
			zap.String("secondary_id", candidate.TrackID))
		m.SecondaryPreviewURL = candidate.PreviewURL
		return m
	}

	c.logger.Debug("No qualifying secondary preview",
		zap.String("query", query),
		zap.Int("results", len(candidates)))
	return m
}
