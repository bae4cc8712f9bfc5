// Package videocat wraps the YouTube Data API as the external video-catalog
// collaborator. Durations are normalised to whole seconds before any value
// leaves this package.
package videocat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// Video is a single external media item from the catalog.
type Video struct {
	ID              string `json:"video_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	ChannelTitle    string `json:"channel_title"`
	PublishedAt     string `json:"published_at"`
	DurationSeconds int    `json:"duration_seconds"`
	ViewCount       uint64 `json:"view_count"`
	LikeCount       uint64 `json:"like_count"`
	URL             string `json:"url"`
	EmbedURL        string `json:"embed_url"`
}

// Catalog describes the video search collaborator consumed by services.
type Catalog interface {
	Search(ctx context.Context, query string, maxResults int64) ([]Video, error)
	VideoDetails(ctx context.Context, videoID string) (Video, error)
	TrendingEducation(ctx context.Context) ([]Video, error)
}

// Client implements Catalog against the YouTube Data API v3.
type Client struct {
	service *youtube.Service
	logger  zerolog.Logger
}

// New constructs a YouTube catalog client with an API key.
func New(ctx context.Context, apiKey string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}

	return &Client{
		service: service,
		logger:  logger.With().Str("component", "videocat").Logger(),
	}, nil
}

// Search returns embeddable videos matching the query, enriched with
// duration and engagement counts.
func (c *Client) Search(ctx context.Context, query string, maxResults int64) ([]Video, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 10
	}

	response, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("relevance").
		VideoEmbeddable("true").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	ids := make([]string, 0, len(response.Items))
	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		ids = append(ids, item.Id.VideoId)
		videos = append(videos, Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    bestThumbnail(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
			URL:          watchURL(item.Id.VideoId),
			EmbedURL:     embedURL(item.Id.VideoId),
		})
	}

	details, err := c.fetchDetails(ctx, ids)
	if err != nil {
		// Search results remain useful without engagement data.
		c.logger.Warn().Err(err).Msg("failed to fetch video details")
		return videos, nil
	}

	for i := range videos {
		if detail, ok := details[videos[i].ID]; ok {
			videos[i].DurationSeconds = detail.DurationSeconds
			videos[i].ViewCount = detail.ViewCount
			videos[i].LikeCount = detail.LikeCount
		}
	}

	return videos, nil
}

// VideoDetails fetches a single video by its catalog identifier.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (Video, error) {
	response, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return Video{}, fmt.Errorf("youtube video details: %w", err)
	}
	if len(response.Items) == 0 {
		return Video{}, ErrVideoNotFound
	}

	return c.toVideo(response.Items[0]), nil
}

// TrendingEducation returns popular videos that look like learning content.
func (c *Client) TrendingEducation(ctx context.Context) ([]Video, error) {
	response, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Chart("mostPopular").
		RegionCode("US").
		VideoCategoryId(educationCategoryID).
		MaxResults(20).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube trending: %w", err)
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		if !looksEducational(item.Snippet.Title, item.Snippet.Description) {
			continue
		}
		videos = append(videos, c.toVideo(item))
	}
	return videos, nil
}

// ErrVideoNotFound indicates the catalog has no video with the given id.
var ErrVideoNotFound = fmt.Errorf("video not found")

const educationCategoryID = "27"

func (c *Client) fetchDetails(ctx context.Context, ids []string) (map[string]Video, error) {
	if len(ids) == 0 {
		return map[string]Video{}, nil
	}

	response, err := c.service.Videos.List([]string{"contentDetails", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	details := make(map[string]Video, len(response.Items))
	for _, item := range response.Items {
		details[item.Id] = c.toVideo(item)
	}
	return details, nil
}

func (c *Client) toVideo(item *youtube.Video) Video {
	video := Video{
		ID:       item.Id,
		URL:      watchURL(item.Id),
		EmbedURL: embedURL(item.Id),
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
		video.ChannelTitle = item.Snippet.ChannelTitle
		video.PublishedAt = item.Snippet.PublishedAt
	}
	if item.ContentDetails != nil {
		seconds, err := ParseISODuration(item.ContentDetails.Duration)
		if err != nil {
			c.logger.Warn().Err(err).Str("video_id", item.Id).Msg("unparseable video duration")
		} else {
			video.DurationSeconds = seconds
		}
	}
	if item.Statistics != nil {
		video.ViewCount = item.Statistics.ViewCount
		video.LikeCount = item.Statistics.LikeCount
	}

	return video
}

func bestThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, candidate := range []*youtube.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func embedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

var educationalKeywords = []string{
	"tutorial", "learn", "course", "lesson", "guide", "how to", "explained",
	"programming", "coding", "mathematics", "science", "education", "study",
	"training", "workshop", "lecture", "university", "academy", "skill",
}

func looksEducational(title, description string) bool {
	content := strings.ToLower(title + " " + description)
	for _, keyword := range educationalKeywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}
