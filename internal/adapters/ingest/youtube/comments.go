package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"

	perr "contestwatch/internal/platform/errors"
	"contestwatch/internal/services/contest/domain"
)

const (
	commentThreadsPath = "/youtube/v3/commentThreads"
	maxResultsCap      = 100
)

var _ domain.CommentFetcher = (*Client)(nil)

// FetchComments lists the newest top level comments of a video, newest first.
// A body without items is a quiet empty page. Entries without an id are dropped
func (c *Client) FetchComments(ctx context.Context, req domain.FetchRequest) ([]domain.Comment, error) {
	n := req.MaxResults
	if n <= 0 || n > maxResultsCap {
		n = maxResultsCap
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("videoId", req.VideoID)
	q.Set("key", req.APIKey)
	q.Set("maxResults", strconv.Itoa(n))
	q.Set("order", "time")

	resp, err := c.Do(ctx, commentThreadsPath, q)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("youtube close body failed")
		}
	}()

	limit := c.opts.MaxBodyBytes
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "youtube read body failed")
	}
	if int64(len(b)) > limit {
		return nil, perr.Unavailablef("youtube response exceeds %d bytes", limit)
	}
	var out commentThreadList
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "youtube response is not valid JSON")
	}
	if out.Items == nil {
		c.log.Debug().Str("video_id", req.VideoID).Msg("youtube response without items")
		return nil, nil
	}

	comments := make([]domain.Comment, 0, len(*out.Items))
	for _, it := range *out.Items {
		if it.ID == "" {
			continue
		}
		s := it.Snippet.TopLevelComment.Snippet
		comments = append(comments, domain.Comment{
			ID:                it.ID,
			AuthorDisplayName: s.AuthorDisplayName,
			TextDisplay:       s.TextDisplay,
		})
	}
	return comments, nil
}
