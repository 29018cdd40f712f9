package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"yt_harvester/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	server   *httptest.Server
	client   *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.handlers = make(map[string]http.HandlerFunc)
	s.hits = make(map[string]int)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := strings.TrimPrefix(r.URL.Path, "/youtube/v3/")
		s.mu.Lock()
		s.hits[resource]++
		h, ok := s.handlers[resource]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := New(context.Background(), Config{
		Endpoint:       s.server.URL + "/",
		HTTPClient:     s.server.Client(),
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, logger)
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) handle(resource string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[resource] = h
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func apiError(code int, reason string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": reason,
			"errors":  []map[string]any{{"reason": reason, "message": reason}},
		},
	}
}

func (s *ClientTestSuite) TestGetChannel() {
	s.handle("channels", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("UC1", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{
				"id":         "UC1",
				"snippet":    map[string]any{"title": "Chan", "description": "About"},
				"statistics": map[string]any{"subscriberCount": "1200", "viewCount": "98765"},
			}},
		})
	})

	ch, err := s.client.GetChannel(context.Background(), "UC1")

	s.Require().NoError(err)
	s.Equal(domain.Channel{
		ID:                "UC1",
		Name:              "Chan",
		SubscriptionCount: 1200,
		ViewCount:         98765,
		Description:       "About",
	}, *ch)
}

func (s *ClientTestSuite) TestGetChannel_NotFound() {
	s.handle("channels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})

	ch, err := s.client.GetChannel(context.Background(), "missing")

	s.Nil(ch)
	s.True(errors.Is(err, domain.ErrChannelNotFound))
}

func (s *ClientTestSuite) TestSearchVideos_Paging() {
	s.handle("search", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("video", r.URL.Query().Get("type"))
		s.Equal("50", r.URL.Query().Get("maxResults"))
		s.Equal("NEXT", r.URL.Query().Get("pageToken"))
		writeJSON(w, http.StatusOK, map[string]any{
			"nextPageToken": "AFTER",
			"items": []map[string]any{
				{"id": map[string]any{"kind": "youtube#video", "videoId": "v1"},
					"snippet": map[string]any{"title": "One", "publishedAt": "2022-03-04T05:06:07+02:00"}},
				{"id": map[string]any{"kind": "youtube#channel", "channelId": "UC1"}},
			},
		})
	})

	page, err := s.client.SearchVideos(context.Background(), "UC1", "NEXT")

	s.Require().NoError(err)
	s.Equal("AFTER", page.NextPageToken)
	s.Require().Len(page.Items, 1)
	s.Equal("v1", page.Items[0].ID)
	s.Equal("2022-03-04T03:06:07Z", page.Items[0].PublishedAt)
}

func (s *ClientTestSuite) TestGetVideos_DefaultsMissingFields() {
	s.handle("videos", func(w http.ResponseWriter, r *http.Request) {
		s.Equal([]string{"v1", "v2"}, r.URL.Query()["id"])
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{
					"id": "v1",
					"snippet": map[string]any{
						"channelId":   "UC1",
						"title":       "One",
						"publishedAt": "2022-01-01T00:00:00Z",
						"thumbnails":  map[string]any{"default": map[string]any{"url": "https://i.ytimg.com/v1.jpg"}},
					},
					"statistics":     map[string]any{"viewCount": "10", "likeCount": "3", "commentCount": "2"},
					"contentDetails": map[string]any{"duration": "PT1M", "caption": "false"},
				},
				{"id": "v2", "snippet": map[string]any{"title": "Two"}},
			},
		})
	})

	videos, err := s.client.GetVideos(context.Background(), []string{"v1", "v2"})

	s.Require().NoError(err)
	s.Require().Len(videos, 2)
	s.Equal(uint64(10), videos[0].ViewCount)
	s.Equal(uint64(3), videos[0].LikeCount)
	s.Equal(uint64(0), videos[0].DislikeCount)
	s.Equal("PT1M", videos[0].Duration)
	s.Equal("false", videos[0].CaptionStatus)
	s.Equal("https://i.ytimg.com/v1.jpg", videos[0].Thumbnail)

	s.Equal(uint64(0), videos[1].ViewCount)
	s.Equal("", videos[1].Duration)
	s.Equal("", videos[1].CaptionStatus)
	s.Equal("", videos[1].Thumbnail)
}

func (s *ClientTestSuite) TestGetVideos_RejectsOversizedBatch() {
	ids := make([]string, MaxVideoIDsPerCall+1)
	for i := range ids {
		ids[i] = "v"
	}

	_, err := s.client.GetVideos(context.Background(), ids)

	s.Error(err)
	s.Equal(0, s.hits["videos"])
}

func (s *ClientTestSuite) TestGetVideos_FailureNamesWholeBatch() {
	s.handle("videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, apiError(http.StatusNotFound, "notFound"))
	})

	_, err := s.client.GetVideos(context.Background(), []string{"v1", "v2", "v3"})

	var fetchErr *domain.FetchError
	s.Require().True(errors.As(err, &fetchErr))
	s.Equal("videos", fetchErr.Resource)
	s.Equal("v1,v2,v3", fetchErr.Key)
	s.Equal(1, s.hits["videos"])
}

func (s *ClientTestSuite) TestListCommentThreads_DisabledIsNotRetried() {
	s.handle("commentThreads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, apiError(http.StatusForbidden, "commentsDisabled"))
	})

	_, err := s.client.ListCommentThreads(context.Background(), "v1", "")

	var fetchErr *domain.FetchError
	s.Require().True(errors.As(err, &fetchErr))
	s.Equal("comment_threads", fetchErr.Resource)
	s.Equal("v1", fetchErr.Key)
	s.Equal(1, s.hits["commentThreads"])
}

func (s *ClientTestSuite) TestListPlaylists_RetriesServerErrors() {
	calls := 0
	s.handle("playlists", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			writeJSON(w, http.StatusServiceUnavailable, apiError(http.StatusServiceUnavailable, "backendError"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{"id": "PL1", "snippet": map[string]any{"title": "Favourites"}}},
		})
	})

	page, err := s.client.ListPlaylists(context.Background(), "UC1", "")

	s.Require().NoError(err)
	s.Equal(3, calls)
	s.Require().Len(page.Items, 1)
	s.Equal(domain.Playlist{ID: "PL1", ChannelID: "UC1", Title: "Favourites"}, page.Items[0])
	s.Empty(page.NextPageToken)
}

func (s *ClientTestSuite) TestListPlaylists_GivesUpAfterMaxAttempts() {
	s.handle("playlists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, apiError(http.StatusInternalServerError, "backendError"))
	})

	_, err := s.client.ListPlaylists(context.Background(), "UC1", "")

	s.Error(err)
	s.Contains(err.Error(), "after 3 attempts")
	s.Equal(3, s.hits["playlists"])
}
