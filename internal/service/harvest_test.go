package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/pagination"
	"yt_harvester/internal/service/mocks"
)

type HarvesterTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	api  *mocks.MockVideoAPI

	harvester *Harvester
}

func (s *HarvesterTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.api = mocks.NewMockVideoAPI(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.harvester = NewHarvester(s.api, 20, logger)
}

func (s *HarvesterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestHarvesterTestSuite(t *testing.T) {
	suite.Run(t, new(HarvesterTestSuite))
}

func (s *HarvesterTestSuite) expectChannel() {
	s.api.EXPECT().GetChannel(gomock.Any(), "UC1").Return(&domain.Channel{
		ID:                "UC1",
		Name:              "Test Channel",
		SubscriptionCount: 10,
		ViewCount:         1000,
	}, nil)
}

func (s *HarvesterTestSuite) expectNoPlaylists() {
	s.api.EXPECT().ListPlaylists(gomock.Any(), "UC1", "").Return(pagination.Page[domain.Playlist]{}, nil)
}

func comments(videoID string, ids ...string) []domain.Comment {
	out := make([]domain.Comment, len(ids))
	for i, id := range ids {
		out[i] = domain.Comment{ID: id, VideoID: videoID, Text: "text " + id}
	}
	return out
}

func (s *HarvesterTestSuite) TestHarvestChannel_BuildsSnapshot() {
	ctx := context.Background()
	s.expectChannel()

	gomock.InOrder(
		s.api.EXPECT().ListPlaylists(gomock.Any(), "UC1", "").Return(pagination.Page[domain.Playlist]{
			Items:         []domain.Playlist{{ID: "PL1", Title: "First"}},
			NextPageToken: "P2",
		}, nil),
		s.api.EXPECT().ListPlaylists(gomock.Any(), "UC1", "P2").Return(pagination.Page[domain.Playlist]{
			Items: []domain.Playlist{{ID: "PL2", Title: "Second"}},
		}, nil),
	)

	gomock.InOrder(
		s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{
			Items:         []domain.VideoListing{{ID: "v1"}, {ID: "v2"}},
			NextPageToken: "S2",
		}, nil),
		s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "S2").Return(pagination.Page[domain.VideoListing]{
			Items: []domain.VideoListing{{ID: "v2"}, {ID: "v3"}},
		}, nil),
	)

	s.api.EXPECT().GetVideos(gomock.Any(), []string{"v1", "v2", "v3"}).Return([]domain.Video{
		{ID: "v1", ViewCount: 5},
		{ID: "v2"},
		{ID: "v3", ChannelID: "someone-else"},
	}, nil)

	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v1", "").Return(pagination.Page[domain.Comment]{
		Items:         comments("v1", "c1"),
		NextPageToken: "C2",
	}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v1", "C2").Return(pagination.Page[domain.Comment]{
		Items: comments("v1", "c2"),
	}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v2", "").Return(pagination.Page[domain.Comment]{}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v3", "").Return(pagination.Page[domain.Comment]{
		Items: comments("v3", "c3"),
	}, nil)

	snap, err := s.harvester.HarvestChannel(ctx, "UC1")

	s.Require().NoError(err)
	s.Equal("UC1", snap.ChannelID())
	s.Equal("Test Channel", snap.Channel.Name)
	s.Require().Len(snap.Playlists, 2)
	s.Equal("PL1", snap.Playlists[0].ID)
	s.Equal("UC1", snap.Playlists[1].ChannelID)

	s.Require().Len(snap.Videos, 3)
	for _, v := range snap.Videos {
		s.Equal("UC1", v.ChannelID)
	}
	s.Equal([]string{"c1", "c2", "c3"}, commentIDs(snap.Comments))
	s.False(snap.CapturedAt.IsZero())
}

func (s *HarvesterTestSuite) TestHarvestChannel_CommentFailureIsIsolated() {
	ctx := context.Background()
	s.expectChannel()
	s.expectNoPlaylists()

	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{
		Items: []domain.VideoListing{{ID: "v1"}, {ID: "v2"}, {ID: "v3"}},
	}, nil)
	s.api.EXPECT().GetVideos(gomock.Any(), []string{"v1", "v2", "v3"}).Return([]domain.Video{
		{ID: "v1"}, {ID: "v2"}, {ID: "v3"},
	}, nil)

	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v1", "").Return(pagination.Page[domain.Comment]{
		Items: comments("v1", "c1", "c2"),
	}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v2", "").Return(
		pagination.Page[domain.Comment]{},
		&domain.FetchError{Resource: "comment_threads", Key: "v2", Err: errors.New("commentsDisabled")},
	)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v3", "").Return(pagination.Page[domain.Comment]{
		Items: comments("v3", "c3"),
	}, nil)

	snap, err := s.harvester.HarvestChannel(ctx, "UC1")

	s.Require().NoError(err)
	s.Len(snap.Videos, 3)
	s.Equal("v2", snap.Videos[1].ID)
	for _, c := range snap.Comments {
		s.NotEqual("v2", c.VideoID)
	}
	s.Equal([]string{"c1", "c2", "c3"}, commentIDs(snap.Comments))
}

func (s *HarvesterTestSuite) TestHarvestChannel_CommentFailureOnLaterPageDropsWholeVideo() {
	ctx := context.Background()
	s.expectChannel()
	s.expectNoPlaylists()

	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{
		Items: []domain.VideoListing{{ID: "v1"}},
	}, nil)
	s.api.EXPECT().GetVideos(gomock.Any(), []string{"v1"}).Return([]domain.Video{{ID: "v1"}}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v1", "").Return(pagination.Page[domain.Comment]{
		Items:         comments("v1", "c1"),
		NextPageToken: "next",
	}, nil)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), "v1", "next").Return(pagination.Page[domain.Comment]{}, errors.New("transient"))

	snap, err := s.harvester.HarvestChannel(ctx, "UC1")

	s.Require().NoError(err)
	s.Len(snap.Videos, 1)
	s.Empty(snap.Comments)
}

func (s *HarvesterTestSuite) TestHarvestChannel_ChannelNotFound() {
	s.api.EXPECT().GetChannel(gomock.Any(), "nope").Return(nil, domain.ErrChannelNotFound)

	snap, err := s.harvester.HarvestChannel(context.Background(), "nope")

	s.Nil(snap)
	s.ErrorIs(err, domain.ErrChannelNotFound)
}

func (s *HarvesterTestSuite) TestHarvestChannel_PlaylistFailureAborts() {
	s.expectChannel()
	s.api.EXPECT().ListPlaylists(gomock.Any(), "UC1", "").Return(pagination.Page[domain.Playlist]{}, errors.New("quota"))

	snap, err := s.harvester.HarvestChannel(context.Background(), "UC1")

	s.Nil(snap)
	s.Error(err)
	s.Contains(err.Error(), "list playlists")
}

func (s *HarvesterTestSuite) TestHarvestChannel_SearchFailureAborts() {
	s.expectChannel()
	s.expectNoPlaylists()
	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{}, errors.New("quota"))

	snap, err := s.harvester.HarvestChannel(context.Background(), "UC1")

	s.Nil(snap)
	s.Contains(err.Error(), "search videos")
}

func (s *HarvesterTestSuite) TestHarvestChannel_BatchesVideoIDs() {
	ctx := context.Background()
	s.expectChannel()
	s.expectNoPlaylists()

	listings := make([]domain.VideoListing, 120)
	ids := make([]string, 120)
	for i := range listings {
		ids[i] = fmt.Sprintf("v%03d", i)
		listings[i] = domain.VideoListing{ID: ids[i]}
	}
	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{Items: listings}, nil)

	toVideos := func(ids []string) []domain.Video {
		out := make([]domain.Video, len(ids))
		for i, id := range ids {
			out[i] = domain.Video{ID: id}
		}
		return out
	}
	gomock.InOrder(
		s.api.EXPECT().GetVideos(gomock.Any(), ids[0:50]).Return(toVideos(ids[0:50]), nil),
		s.api.EXPECT().GetVideos(gomock.Any(), ids[50:100]).Return(toVideos(ids[50:100]), nil),
		s.api.EXPECT().GetVideos(gomock.Any(), ids[100:120]).Return(toVideos(ids[100:120]), nil),
	)
	s.api.EXPECT().ListCommentThreads(gomock.Any(), gomock.Any(), "").Return(pagination.Page[domain.Comment]{}, nil).Times(120)

	snap, err := s.harvester.HarvestChannel(ctx, "UC1")

	s.Require().NoError(err)
	s.Require().Len(snap.Videos, 120)
	s.Equal("v000", snap.Videos[0].ID)
	s.Equal("v050", snap.Videos[50].ID)
	s.Equal("v119", snap.Videos[119].ID)
}

func (s *HarvesterTestSuite) TestHarvestChannel_VideoBatchFailureAborts() {
	s.expectChannel()
	s.expectNoPlaylists()
	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{
		Items: []domain.VideoListing{{ID: "v1"}},
	}, nil)
	s.api.EXPECT().GetVideos(gomock.Any(), []string{"v1"}).Return(nil, errors.New("backend"))

	snap, err := s.harvester.HarvestChannel(context.Background(), "UC1")

	s.Nil(snap)
	s.Contains(err.Error(), "get video details")
}

func (s *HarvesterTestSuite) TestHarvestChannel_NoVideos() {
	s.expectChannel()
	s.expectNoPlaylists()
	s.api.EXPECT().SearchVideos(gomock.Any(), "UC1", "").Return(pagination.Page[domain.VideoListing]{}, nil)

	snap, err := s.harvester.HarvestChannel(context.Background(), "UC1")

	s.Require().NoError(err)
	s.Empty(snap.Videos)
	s.Empty(snap.Comments)
}

func commentIDs(cs []domain.Comment) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
