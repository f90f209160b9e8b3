package domain

import "fmt"

// DefaultEmail stands in for an identity without a public email
const DefaultEmail = "noreply@mattermost.com"

// User is the identity the bot token authenticates as
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Roles     string `json:"roles,omitempty"`
}

// FallbackUser is served in place of an identity that could not be fetched
func FallbackUser() *User {
	return &User{
		ID:        "",
		Username:  "api-user",
		FirstName: "Mattermost",
		LastName:  "API",
	}
}

// Contact formats the user the way RSS expects an editor address
func (u *User) Contact() string {
	email := u.Email
	if email == "" {
		email = DefaultEmail
	}
	return fmt.Sprintf("%s (%s %s)", email, u.FirstName, u.LastName)
}
