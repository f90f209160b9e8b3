package domain

// NewsPost is an ordinary channel message reshaped for the feed
type NewsPost struct {
	ID            string         `json:"id"`
	Message       string         `json:"message"`
	CreateAt      int64          `json:"createAt"`
	UpdateAt      int64          `json:"updateAt"`
	ChannelID     string         `json:"channelId"`
	UserID        string         `json:"userId"`
	FileIDs       []string       `json:"fileIds"`
	Type          string         `json:"type"`
	ReplyCount    int64          `json:"replyCount"`
	IsPinned      bool           `json:"isPinned"`
	HasReactions  bool           `json:"hasReactions"`
	ReactionCount int            `json:"reactionCount"`
	Props         map[string]any `json:"props,omitempty"`
}

// IsOrdinary reports whether the post is a user message. Mattermost tags
// system and event posts (joins, header changes) with a non-empty type.
func (p *NewsPost) IsOrdinary() bool {
	return p.Type == ""
}

// StringProp returns a props value when it is a string
func (p *NewsPost) StringProp(key string) (string, bool) {
	v, ok := p.Props[key].(string)
	return v, ok
}
