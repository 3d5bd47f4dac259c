package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/template"
)

var logger = log.WithField("package", "github")

const GH_COMMENT_MARKER = template.ToolCommentSignature

// GitHubClient defines the interface for GitHub API operations
type GitHubClient interface {
	// GetPR retrieves pull request information
	GetPR(ctx context.Context, repo string, number int) (*models.PullRequest, error)
	// CreateComment creates a new comment on a pull request
	CreateComment(ctx context.Context, repo string, number int, body string) (*models.Comment, error)
	// UpdateComment updates an existing comment
	UpdateComment(ctx context.Context, repo string, commentID int64, body string) (*models.Comment, error)
	// GetComments retrieves all comments for a pull request
	GetComments(ctx context.Context, repo string, number int) ([]*models.Comment, error)
	// FindToolComment finds an existing tool-generated comment
	FindToolComment(ctx context.Context, repo string, prNumber int) (*models.Comment, error)
	// UpsertToolComment updates the tool comment or creates it when missing
	UpsertToolComment(ctx context.Context, repo string, prNumber int, body string) (*models.Comment, error)
}

// Client handles GitHub API interactions using go-github
type Client struct {
	client *github.Client
}

// Ensure Client implements GitHubClient
var _ GitHubClient = (*Client)(nil)

// NewClient creates a GitHub client from GH_TOKEN or GITHUB_TOKEN.
// GITHUB_API_URL points it at a GitHub Enterprise server.
func NewClient() (*Client, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, errors.New("GitHub token not found. Set GH_TOKEN or GITHUB_TOKEN environment variable")
	}
	return NewClientWithToken(token, os.Getenv("GITHUB_API_URL"))
}

// NewClientWithToken creates a GitHub client for the given token. An empty
// baseURL means api.github.com.
func NewClientWithToken(token, baseURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if baseURL != "" && baseURL != "https://api.github.com" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{
		client: client,
	}, nil
}

// GetPR retrieves pull request information
func (c *Client) GetPR(ctx context.Context, repo string, number int) (*models.PullRequest, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}

	return &models.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		BaseRef: pr.GetBase().GetRef(),
		BaseSHA: pr.GetBase().GetSHA(),
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		State:   pr.GetState(),
		Merged:  pr.GetMerged(),
	}, nil
}

// CreateComment creates a new comment on a pull request
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) (*models.Comment, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	comment := &github.IssueComment{
		Body: github.String(body),
	}

	created, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return toComment(created), nil
}

// UpdateComment updates an existing comment
func (c *Client) UpdateComment(ctx context.Context, repo string, commentID int64, body string) (*models.Comment, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	comment := &github.IssueComment{
		Body: github.String(body),
	}

	updated, _, err := c.client.Issues.EditComment(ctx, owner, repo, commentID, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	logger.WithField("commentID", commentID).Debug("Updated comment")
	return toComment(updated), nil
}

// GetComments retrieves all comments for a pull request, following pagination
func (c *Client) GetComments(ctx context.Context, repo string, prNumber int) ([]*models.Comment, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allComments []*models.Comment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get comments: %w", err)
		}

		for _, c := range comments {
			allComments = append(allComments, toComment(c))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// FindToolComment finds an existing tool-generated comment.
// If several carry the marker the latest one (highest ID) wins.
func (c *Client) FindToolComment(ctx context.Context, repo string, prNumber int) (*models.Comment, error) {
	comments, err := c.GetComments(ctx, repo, prNumber)
	if err != nil {
		return nil, err
	}
	return latestToolComment(comments), nil
}

// UpsertToolComment updates the tool comment or creates it when missing
func (c *Client) UpsertToolComment(ctx context.Context, repo string, prNumber int, body string) (*models.Comment, error) {
	existing, err := c.FindToolComment(ctx, repo, prNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.WithField("commentID", existing.ID).Info("Updating existing comment")
		return c.UpdateComment(ctx, repo, existing.ID, body)
	}
	logger.WithField("pr", prNumber).Info("Creating new comment")
	return c.CreateComment(ctx, repo, prNumber, body)
}

func latestToolComment(comments []*models.Comment) *models.Comment {
	var latest *models.Comment
	for _, comment := range comments {
		if !strings.Contains(comment.Body, GH_COMMENT_MARKER) {
			continue
		}
		if latest == nil || comment.ID > latest.ID {
			latest = comment
		}
	}
	return latest
}

func toComment(c *github.IssueComment) *models.Comment {
	return &models.Comment{
		ID:        c.GetID(),
		Body:      c.GetBody(),
		User:      c.GetUser().GetLogin(),
		HTMLURL:   c.GetHTMLURL(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}
