package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/transport/mattermost"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/transport/mattermost/mattermosttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listAPI struct {
	list *model.PostList
}

func (a listAPI) ChannelPosts(context.Context, string, int, int) (*model.PostList, error) {
	return a.list, nil
}

func TestMattermostStorage_GetPosts(t *testing.T) {
	fake := mattermosttest.NewServer("token")
	t.Cleanup(fake.Close)

	pinned := &model.Post{
		Id:         "p2",
		ChannelId:  "ch1",
		UserId:     "u1",
		Message:    "Release **2.0**",
		CreateAt:   2000,
		UpdateAt:   2500,
		IsPinned:   true,
		ReplyCount: 3,
		FileIds:    model.StringArray{"f1"},
	}
	pinned.AddProp("tags", "release, product")
	pinned.AddProp("mentions", "internal")

	fake.SetPosts("ch1",
		pinned,
		&model.Post{Id: "p1", ChannelId: "ch1", Message: "hello", CreateAt: 1000},
	)

	client := mattermost.New(&config.Config{MattermostURL: fake.URL, BotToken: "token", UpstreamTimeout: 5 * time.Second})
	repo := NewMattermostStorage(client)

	posts, err := repo.GetPosts(context.Background(), "ch1", 0, 50)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "p2", first.ID)
	assert.Equal(t, "Release **2.0**", first.Message)
	assert.Equal(t, int64(2000), first.CreateAt)
	assert.Equal(t, int64(2500), first.UpdateAt)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, []string{"f1"}, first.FileIDs)
	assert.Equal(t, int64(3), first.ReplyCount)
	assert.True(t, first.IsPinned)
	assert.Equal(t, map[string]any{"tags": "release, product"}, first.Props)

	second := posts[1]
	assert.NotNil(t, second.FileIDs)
	assert.Empty(t, second.FileIDs)
	assert.Zero(t, second.ReplyCount)
	assert.Nil(t, second.Props)
}

func TestMattermostStorage_SkipsIDsMissingFromMap(t *testing.T) {
	list := model.NewPostList()
	list.AddPost(&model.Post{Id: "p1", Message: "kept"})
	list.AddOrder("ghost")
	list.AddOrder("p1")

	repo := NewMattermostStorage(listAPI{list: list})

	posts, err := repo.GetPosts(context.Background(), "ch1", 0, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestMattermostStorage_CountsReactions(t *testing.T) {
	list := model.NewPostList()
	list.AddPost(&model.Post{
		Id: "p1",
		Metadata: &model.PostMetadata{Reactions: []*model.Reaction{
			{UserId: "u1", PostId: "p1", EmojiName: "+1"},
			{UserId: "u2", PostId: "p1", EmojiName: "tada"},
		}},
	})
	list.AddOrder("p1")

	posts, err := NewMattermostStorage(listAPI{list: list}).GetPosts(context.Background(), "ch1", 0, 50)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].HasReactions)
	assert.Equal(t, 2, posts[0].ReactionCount)
}
