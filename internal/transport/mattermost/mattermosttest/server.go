// Package mattermosttest provides an in-process fake of the subset of the
// Mattermost REST API v4 used by the feed service.
package mattermosttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/mattermost/mattermost/server/public/model"
)

// Call records one request received by the fake.
type Call struct {
	Method string
	Path   string
	Query  string
}

// Server wraps an httptest.Server answering with canned Mattermost data.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	token    string
	me       *model.User
	channels map[string]*model.Channel
	names    map[string]string
	posts    map[string]*model.PostList
	failing  []string
}

// NewServer starts a fake accepting the given bearer token. An empty token
// disables the authorization check.
func NewServer(token string) *Server {
	s := &Server{
		token:    token,
		channels: make(map[string]*model.Channel),
		names:    make(map[string]string),
		posts:    make(map[string]*model.PostList),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/users/me", s.handleMe)
	mux.HandleFunc("GET /api/v4/teams/{teamID}/channels/name/{name}", s.handleChannelByName)
	mux.HandleFunc("GET /api/v4/channels/{channelID}/posts", s.handlePosts)
	mux.HandleFunc("GET /api/v4/channels/{channelID}", s.handleChannel)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "api.context.404.app_error", "not found: "+r.URL.Path)
	})

	s.Server = httptest.NewServer(s.middleware(mux))
	return s
}

// SetMe sets the user returned by GET /users/me
func (s *Server) SetMe(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.me = user
}

// AddChannel registers a channel reachable by id and by team/name
func (s *Server) AddChannel(channel *model.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[channel.Id] = channel
	s.names[channel.TeamId+"/"+channel.Name] = channel.Id
}

// SetPosts sets the posts of a channel. The order of the arguments is the
// order the fake reports in the post list.
func (s *Server) SetPosts(channelID string, posts ...*model.Post) {
	list := model.NewPostList()
	for _, p := range posts {
		list.AddPost(p)
		list.AddOrder(p.Id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[channelID] = list
}

// Fail makes every request whose path contains fragment answer 500
func (s *Server) Fail(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = append(s.failing, fragment)
}

// Calls returns a copy of the recorded requests
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Call, len(s.calls))
	copy(cp, s.calls)
	return cp
}

// CalledPath reports whether any recorded request path contains fragment
func (s *Server) CalledPath(fragment string) bool {
	for _, c := range s.Calls() {
		if strings.Contains(c.Path, fragment) {
			return true
		}
	}
	return false
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
		failing := append([]string(nil), s.failing...)
		s.mu.Unlock()

		for _, fragment := range failing {
			if strings.Contains(r.URL.Path, fragment) {
				writeError(w, http.StatusInternalServerError, "fake.failure.app_error", "fake error")
				return
			}
		}

		if s.token != "" {
			auth := r.Header.Get("Authorization")
			if !strings.EqualFold(auth, model.HeaderBearer+" "+s.token) {
				writeError(w, http.StatusUnauthorized, "api.context.session_expired.app_error", "invalid or expired session")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	me := s.me
	s.mu.Unlock()

	if me == nil {
		writeError(w, http.StatusNotFound, "app.user.missing_account.const", "user not found")
		return
	}
	writeJSON(w, me)
}

func (s *Server) handleChannelByName(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("teamID") + "/" + r.PathValue("name")

	s.mu.Lock()
	channel, ok := s.channels[s.names[key]]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "app.channel.get_by_name.missing.app_error", "channel not found")
		return
	}
	writeJSON(w, channel)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	channel, ok := s.channels[r.PathValue("channelID")]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "app.channel.get.existing.app_error", "channel not found")
		return
	}
	writeJSON(w, channel)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list, ok := s.posts[r.PathValue("channelID")]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, model.NewPostList())
		return
	}

	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage <= 0 || perPage >= len(list.Order) {
		writeJSON(w, list)
		return
	}

	page := model.NewPostList()
	for _, id := range list.Order[:perPage] {
		page.AddPost(list.Posts[id])
		page.AddOrder(id)
	}
	writeJSON(w, page)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, id, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.NewAppError("fake", id, nil, message, status))
}
