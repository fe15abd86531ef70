package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// dockerHubRepository is the subset of the Docker Hub repository payload we read.
type dockerHubRepository struct {
	Name           string `json:"name"`
	User           string `json:"user"`
	Namespace      string `json:"namespace"`
	PullCount      *int64 `json:"pull_count"`
	StarCount      int64  `json:"star_count"`
	DateRegistered string `json:"date_registered"`
	LastUpdated    string `json:"last_updated"`
}

// DockerHubSource reads the pull count of one Docker Hub repository.
type DockerHubSource struct {
	client  *Client
	baseURL string
	metric  schema.Metric
}

var _ contract.RepositorySource = &DockerHubSource{} // Compile-time check

// NewDockerHubSource creates a source for "<namespace>/<name>" under baseURL.
func NewDockerHubSource(client *Client, baseURL, repository string) *DockerHubSource {
	return &DockerHubSource{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		metric:  schema.NewMetric(schema.PullsKind, repository),
	}
}

// Metric returns the pulls metric of the repository.
func (s *DockerHubSource) Metric() schema.Metric { return s.metric }

// FetchCurrentTotal returns the repository's cumulative pull count.
func (s *DockerHubSource) FetchCurrentTotal(ctx context.Context) (int64, error) {
	info, err := s.FetchRepository(ctx)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// FetchRepository returns the repository description with Count set to pull_count.
func (s *DockerHubSource) FetchRepository(ctx context.Context) (schema.RepositoryInfo, error) {
	source := sourceName("dockerhub", s.metric.Repository)
	url := fmt.Sprintf("%s/%s", s.baseURL, s.metric.Repository)

	var repo dockerHubRepository
	if err := s.client.getJSON(ctx, source, url, &repo); err != nil {
		return schema.RepositoryInfo{}, err
	}
	if repo.PullCount == nil {
		return schema.RepositoryInfo{}, contract.NewUpstreamError(source, "response has no pull_count")
	}
	if *repo.PullCount < 0 {
		return schema.RepositoryInfo{}, contract.NewUpstreamError(source, "negative pull_count %d", *repo.PullCount)
	}

	user := repo.User
	if user == "" {
		user = repo.Namespace
	}
	return schema.RepositoryInfo{
		Name:           repo.Name,
		User:           user,
		Count:          *repo.PullCount,
		Stars:          repo.StarCount,
		DateRegistered: parseTimestamp(repo.DateRegistered),
		LastUpdated:    parseTimestamp(repo.LastUpdated),
	}, nil
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds. Unparseable input yields the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
