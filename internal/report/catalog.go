package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"yt_harvester/internal/domain"
	"yt_harvester/internal/duration"
)

var ErrUnknownReport = errors.New("unknown report")

// Executor runs literal query text against the store.
type Executor interface {
	Query(ctx context.Context, query string) (*domain.Table, error)
}

// Transform rewrites a query result in place before it is returned.
type Transform func(table *domain.Table) error

type Entry struct {
	Question  string
	Query     string
	Transform Transform
}

const (
	rawDurationColumn       = "average_duration_seconds"
	formattedDurationColumn = "average_duration"
)

var entries = []Entry{
	{
		Question: "What are the names of all the videos and their corresponding channels?",
		Query: `
			SELECT videos.title AS video_name, channels.name AS channel_name
			FROM videos
			JOIN channels ON videos.channel_id = channels.id
			ORDER BY channels.name, videos.title`,
	},
	{
		Question: "Which channels have the most number of videos, and how many videos do they have?",
		Query: `
			SELECT channels.name AS channel_name, COUNT(videos.id) AS video_count
			FROM channels
			JOIN videos ON channels.id = videos.channel_id
			GROUP BY channels.name
			ORDER BY video_count DESC`,
	},
	{
		Question: "What are the top 10 most viewed videos and their respective channels?",
		Query: `
			SELECT videos.title AS video_name, channels.name AS channel_name, videos.view_count AS view_count
			FROM videos
			JOIN channels ON videos.channel_id = channels.id
			ORDER BY videos.view_count DESC
			LIMIT 10`,
	},
	{
		Question: "How many comments were made on each video, and what are their corresponding video names?",
		Query: `
			SELECT videos.title AS video_name, COUNT(comments.id) AS comment_count
			FROM videos
			JOIN comments ON videos.id = comments.video_id
			GROUP BY videos.title
			ORDER BY videos.title`,
	},
	{
		Question: "Which videos have the highest number of likes, and what are their corresponding channel names?",
		Query: `
			SELECT videos.title AS video_name, channels.name AS channel_name, videos.like_count AS like_count
			FROM videos
			JOIN channels ON videos.channel_id = channels.id
			ORDER BY videos.like_count DESC`,
	},
	{
		Question: "What is the total number of likes and dislikes for each video, and what are their corresponding video names?",
		Query: `
			SELECT videos.title AS video_name, videos.like_count AS like_count, videos.dislike_count AS dislike_count
			FROM videos
			ORDER BY videos.title`,
	},
	{
		Question: "What is the total number of views for each channel, and what are their corresponding channel names?",
		Query: `
			SELECT channels.name AS channel_name, channels.view_count AS view_count
			FROM channels
			ORDER BY channels.name`,
	},
	{
		Question: "What are the names of all the channels that have published videos in the year 2022?",
		Query: `
			SELECT DISTINCT channels.name AS channel_name
			FROM channels
			JOIN videos ON channels.id = videos.channel_id
			WHERE EXTRACT(YEAR FROM videos.published_at) = 2022
			ORDER BY channels.name`,
	},
	{
		Question: "What is the average duration of all videos in each channel, and what are their corresponding channel names?",
		Query: `
			SELECT channels.name AS channel_name,
				ROUND(AVG(videos.duration_seconds))::BIGINT AS ` + rawDurationColumn + `
			FROM channels
			JOIN videos ON channels.id = videos.channel_id
			GROUP BY channels.name
			ORDER BY channels.name`,
		Transform: formatDurationColumn,
	},
	{
		Question: "Which videos have the highest number of comments, and what are their corresponding channel names?",
		Query: `
			SELECT videos.title AS video_name, channels.name AS channel_name, COUNT(comments.id) AS comment_count
			FROM videos
			JOIN channels ON videos.channel_id = channels.id
			JOIN comments ON videos.id = comments.video_id
			GROUP BY videos.title, channels.name
			ORDER BY comment_count DESC`,
	},
}

// Catalog is the fixed, ordered set of analytical reports.
type Catalog struct {
	executor Executor
	entries  []Entry
	index    map[string]int
}

func NewCatalog(executor Executor) *Catalog {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Question] = i
	}
	return &Catalog{
		executor: executor,
		entries:  entries,
		index:    index,
	}
}

// Questions lists the report questions in catalog order.
func (c *Catalog) Questions() []string {
	questions := make([]string, len(c.entries))
	for i, e := range c.entries {
		questions[i] = e.Question
	}
	return questions
}

// Lookup resolves a question or its 1-based position in the catalog.
func (c *Catalog) Lookup(key string) (Entry, error) {
	if i, ok := c.index[key]; ok {
		return c.entries[i], nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(c.entries) {
		return c.entries[n-1], nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownReport, key)
}

// Run executes the report for question and applies its transform, if any.
func (c *Catalog) Run(ctx context.Context, question string) (*domain.Table, error) {
	entry, err := c.Lookup(question)
	if err != nil {
		return nil, err
	}

	table, err := c.executor.Query(ctx, entry.Query)
	if err != nil {
		return nil, fmt.Errorf("run report %q: %w", entry.Question, err)
	}

	if entry.Transform != nil {
		if err := entry.Transform(table); err != nil {
			return nil, fmt.Errorf("transform report %q: %w", entry.Question, err)
		}
	}

	return table, nil
}

// formatDurationColumn replaces the raw seconds column with an HH:MM:SS column in the same position.
func formatDurationColumn(table *domain.Table) error {
	col := table.ColumnIndex(rawDurationColumn)
	if col < 0 {
		return fmt.Errorf("column %q not found", rawDurationColumn)
	}

	table.Columns[col] = formattedDurationColumn
	for _, row := range table.Rows {
		seconds, err := toSeconds(row[col])
		if err != nil {
			return err
		}
		row[col] = duration.FormatSeconds(seconds)
	}
	return nil
}

func toSeconds(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(math.Round(n)), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("parse seconds %q: %w", n, err)
		}
		return int64(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("unexpected seconds value of type %T", v)
	}
}
