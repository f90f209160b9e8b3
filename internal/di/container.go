package di

import (
	"log/slog"

	channelRepo "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/service"
	feedService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/feed/service"
	postRepo "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/repository"
	postService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/service"
	userRepo "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/repository"
	userService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/service"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	httpServer "github.com/reshetovitsme/mattermost-rss-feed/internal/transport/http"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/transport/mattermost"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container around an already
// loaded configuration
func Setup(cfg *config.Config) (do.Injector, error) {
	if cfg == nil {
		return nil, oops.With("context", "setting up container").New("config is required")
	}

	injector := do.New()

	do.ProvideValue(injector, cfg)

	// Register Mattermost client
	do.Provide(injector, func(i do.Injector) (*mattermost.Client, error) {
		return mattermost.New(do.MustInvoke[*config.Config](i)), nil
	})

	// Register Channel Repository
	do.Provide(injector, func(i do.Injector) (channelRepo.Repository, error) {
		return channelRepo.NewMattermostStorage(do.MustInvoke[*mattermost.Client](i)), nil
	})

	// Register Post Repository
	do.Provide(injector, func(i do.Injector) (postRepo.Repository, error) {
		return postRepo.NewMattermostStorage(do.MustInvoke[*mattermost.Client](i)), nil
	})

	// Register User Repository
	do.Provide(injector, func(i do.Injector) (userRepo.Repository, error) {
		return userRepo.NewMattermostStorage(do.MustInvoke[*mattermost.Client](i)), nil
	})

	// Register Channel Service
	do.Provide(injector, func(i do.Injector) (*channelService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[channelRepo.Repository](i)
		return channelService.New(cfg, repo), nil
	})

	// Register Post Service
	do.Provide(injector, func(i do.Injector) (*postService.Service, error) {
		channels := do.MustInvoke[*channelService.Service](i)
		repo := do.MustInvoke[postRepo.Repository](i)
		return postService.New(channels, repo), nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		repo := do.MustInvoke[userRepo.Repository](i)
		return userService.New(repo), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*postService.Service](i),
			do.MustInvoke[*channelService.Service](i),
			do.MustInvoke[*userService.Service](i),
		), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		server := httpServer.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*postService.Service](i),
			do.MustInvoke[*channelService.Service](i),
			do.MustInvoke[*userService.Service](i),
		)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}
