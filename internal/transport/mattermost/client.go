// Package mattermost is the outbound transport to the Mattermost REST API v4.
package mattermost

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/errors"
	"github.com/samber/oops"
)

const (
	opChannelByName = "get_channel_by_name"
	opChannel       = "get_channel"
	opChannelPosts  = "get_channel_posts"
	opMe            = "get_me"
)

// Client performs authenticated Mattermost API calls. Calls are never
// retried; each one is bounded by the configured upstream timeout.
type Client struct {
	api *model.Client4
}

// New creates a client authenticated with the configured bot token
func New(cfg *config.Config) *Client {
	api := model.NewAPIv4Client(cfg.MattermostURL)
	api.SetToken(cfg.BotToken)
	api.HTTPClient = &http.Client{Timeout: cfg.UpstreamTimeout}

	return &Client{api: api}
}

// ChannelByName looks a channel up by its URL name within a team
func (c *Client) ChannelByName(ctx context.Context, teamID, name string) (*model.Channel, error) {
	return call(opChannelByName, func() (*model.Channel, *model.Response, error) {
		return c.api.GetChannelByName(ctx, name, teamID, "")
	}, "team_id", teamID, "channel_name", name)
}

// Channel fetches channel metadata by id
func (c *Client) Channel(ctx context.Context, channelID string) (*model.Channel, error) {
	return call(opChannel, func() (*model.Channel, *model.Response, error) {
		return c.api.GetChannel(ctx, channelID, "")
	}, "channel_id", channelID)
}

// ChannelPosts fetches one page of posts for a channel
func (c *Client) ChannelPosts(ctx context.Context, channelID string, page, perPage int) (*model.PostList, error) {
	return call(opChannelPosts, func() (*model.PostList, *model.Response, error) {
		return c.api.GetPostsForChannel(ctx, channelID, page, perPage, "", false, false)
	}, "channel_id", channelID, "page", page, "per_page", perPage)
}

// Me fetches the user record the bot token belongs to
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	return call(opMe, func() (*model.User, *model.Response, error) {
		return c.api.GetMe(ctx, "")
	})
}

func call[T any](operation string, fn func() (*T, *model.Response, error), attrs ...any) (*T, error) {
	start := time.Now()
	result, resp, err := fn()
	upstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err == nil && result == nil {
		err = fmt.Errorf("empty response body")
	}
	if err != nil {
		upstreamRequestsTotal.WithLabelValues(operation, "error").Inc()

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}
		return nil, oops.
			In("mattermost").
			With("operation", operation, "status_code", statusCode).
			With(attrs...).
			Wrap(fmt.Errorf("%w: %w", errors.ErrUpstream, err))
	}

	upstreamRequestsTotal.WithLabelValues(operation, "success").Inc()
	return result, nil
}
