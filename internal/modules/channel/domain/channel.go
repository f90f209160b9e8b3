package domain

// Channel represents the Mattermost channel the feed is built from
type Channel struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Purpose     string `json:"purpose"`
	Header      string `json:"header"`
	Name        string `json:"name"`
}

// FallbackChannel is served in place of channel metadata that could not be fetched
func FallbackChannel() *Channel {
	return &Channel{
		ID:          "",
		DisplayName: "News Channel",
		Purpose:     "News and updates feed",
		Header:      "",
		Name:        "news",
	}
}
