package client

import (
	"context"
	"net/url"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// UserContributions fetches the contribution summary of one user. Missing
// lists in the body are normalized to empty ones.
func (c *Client) UserContributions(ctx context.Context, userID string) (*entity.ContributionSummary, error) {
	var summary entity.ContributionSummary
	if err := c.getJSON(ctx, usersPath+url.PathEscape(userID)+"/contributions", nil, "contributions", &summary); err != nil {
		return nil, err
	}
	summary.Normalize(userID)
	return &summary, nil
}

// UserMediaContributions fetches one user's contributions of a single media type.
func (c *Client) UserMediaContributions(ctx context.Context, userID, mediaType string) (*entity.MediaContributions, error) {
	var media entity.MediaContributions
	path := usersPath + url.PathEscape(userID) + "/contributions/" + url.PathEscape(mediaType)
	if err := c.getJSON(ctx, path, nil, "contributions", &media); err != nil {
		return nil, err
	}
	if media.UserID == "" {
		media.UserID = userID
	}
	if media.MediaType == "" {
		media.MediaType = mediaType
	}
	if media.Contributions == nil {
		media.Contributions = []entity.Contribution{}
	}
	return &media, nil
}

// ContributionCount returns the total number of contributions of a user. When
// the backend leaves the total at zero, the per-media counts are summed.
func (c *Client) ContributionCount(ctx context.Context, userID string) (int, error) {
	summary, err := c.UserContributions(ctx, userID)
	if err != nil {
		return 0, err
	}
	if summary.TotalContributions > 0 {
		return summary.TotalContributions, nil
	}
	total := 0
	for _, n := range summary.ContributionsByMediaType {
		total += n
	}
	return total, nil
}
