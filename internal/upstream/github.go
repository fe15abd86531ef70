package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

type gitHubRepository struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	StargazersCount *int64 `json:"stargazers_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// GitHubSource reads the stargazer count of one GitHub repository.
type GitHubSource struct {
	client  *Client
	baseURL string
	metric  schema.Metric
}

var _ contract.RepositorySource = &GitHubSource{} // Compile-time check

// NewGitHubSource creates a source for "<owner>/<repo>" under baseURL.
func NewGitHubSource(client *Client, baseURL, repository string) *GitHubSource {
	return &GitHubSource{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		metric:  schema.NewMetric(schema.StarsKind, repository),
	}
}

// Metric returns the stars metric of the repository.
func (s *GitHubSource) Metric() schema.Metric { return s.metric }

// FetchCurrentTotal returns the repository's stargazer count.
func (s *GitHubSource) FetchCurrentTotal(ctx context.Context) (int64, error) {
	info, err := s.FetchRepository(ctx)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// FetchRepository returns the repository description with Count set to stargazers_count.
func (s *GitHubSource) FetchRepository(ctx context.Context) (schema.RepositoryInfo, error) {
	source := sourceName("github", s.metric.Repository)
	url := fmt.Sprintf("%s/%s", s.baseURL, s.metric.Repository)

	var repo gitHubRepository
	if err := s.client.getJSON(ctx, source, url, &repo); err != nil {
		return schema.RepositoryInfo{}, err
	}
	if repo.StargazersCount == nil {
		return schema.RepositoryInfo{}, contract.NewUpstreamError(source, "response has no stargazers_count")
	}
	if *repo.StargazersCount < 0 {
		return schema.RepositoryInfo{}, contract.NewUpstreamError(source, "negative stargazers_count %d", *repo.StargazersCount)
	}

	name := repo.FullName
	if name == "" {
		name = s.metric.Repository
	}
	return schema.RepositoryInfo{
		Name:           name,
		User:           repo.Owner.Login,
		Count:          *repo.StargazersCount,
		Stars:          *repo.StargazersCount,
		DateRegistered: parseTimestamp(repo.CreatedAt),
		LastUpdated:    parseTimestamp(repo.UpdatedAt),
	}, nil
}
