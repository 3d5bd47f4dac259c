package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"github.com/1744154709/BatchComparisonJar/src/pkg/config"
	"github.com/1744154709/BatchComparisonJar/src/pkg/decompile"
	"github.com/1744154709/BatchComparisonJar/src/pkg/github"
	"github.com/1744154709/BatchComparisonJar/src/pkg/models"
	"github.com/1744154709/BatchComparisonJar/src/pkg/policy"
	"github.com/1744154709/BatchComparisonJar/src/pkg/template"
)

// MAX_COMMENT_LENGTH stays below the GitHub issue comment limit of 65536 characters
const MAX_COMMENT_LENGTH = 65000

// RunnerGitHub additionally posts the summary as a pull request comment
// and reads gate overrides from the pull request comments.
type RunnerGitHub struct {
	RunnerBase

	ghclient github.GitHubClient
	prInfo   *models.PullRequest
}

// make RunnerGitHub implement RunnerInterface
var _ RunnerInterface = (*RunnerGitHub)(nil)

func NewRunnerGitHub(
	ctx context.Context,
	options *Options,
	cfg *config.Config,
	fs billy.Filesystem,
	decompiler decompile.Decompiler,
	evaluator policy.PolicyEvaluator,
	renderer *template.Renderer,
	ghclient github.GitHubClient,
) (*RunnerGitHub, error) {
	if ghclient == nil {
		return nil, errors.New("GitHub client is not initialized")
	}
	baseRunner, err := NewRunnerBase(ctx, options, cfg, fs, decompiler, evaluator, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerGitHub{
		RunnerBase: *baseRunner,
		ghclient:   ghclient,
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerGitHub) Initialize() error {
	if err := r.RunnerBase.Initialize(); err != nil {
		return err
	}
	if err := r.fetchAndSetPullRequestInfo(); err != nil {
		return fmt.Errorf("failed to fetch pull request info: %w", err)
	}

	r.OldLabel = fmt.Sprintf("%s@%s", r.prInfo.BaseRef, github.ShortSHA(r.prInfo.BaseSHA))
	r.NewLabel = fmt.Sprintf("%s@%s", r.prInfo.HeadRef, github.ShortSHA(r.prInfo.HeadSHA))
	r.Config.Report.Title = fmt.Sprintf("%s: PR #%d", r.Config.Report.Title, r.prInfo.Number)
	return nil
}

// Fetch and set pull request data and comments in parallel
func (r *RunnerGitHub) fetchAndSetPullRequestInfo() error {
	g, ctx := errgroup.WithContext(r.Context)

	var pr *models.PullRequest
	var comments []*models.Comment
	g.Go(func() error {
		var err error
		pr, err = r.ghclient.GetPR(ctx, r.Options.GhRepo, r.Options.GhPrNumber)
		if err != nil {
			return fmt.Errorf("failed to get PR info: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		comments, err = r.ghclient.GetComments(ctx, r.Options.GhRepo, r.Options.GhPrNumber)
		if err != nil {
			return fmt.Errorf("failed to get PR comments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	r.prInfo = pr
	r.Comments = comments
	logger.WithField("pr", pr.Number).WithField("comments", len(comments)).Info("Fetched pull request info")
	return nil
}

// Output writes the local files and then upserts the PR comment
func (r *RunnerGitHub) Output(out *RunOutput) error {
	if err := r.RunnerBase.Output(out); err != nil {
		return err
	}

	logger.WithField("repo", r.Options.GhRepo).WithField("pr", r.Options.GhPrNumber).Info("OutputComment: starting...")
	comment, err := r.ghclient.UpsertToolComment(r.Context, r.Options.GhRepo, r.Options.GhPrNumber, truncateComment(out.Summary))
	if err != nil {
		return fmt.Errorf("failed to post PR comment: %w", err)
	}
	logger.WithField("commentID", comment.ID).WithField("url", comment.HTMLURL).Info("OutputComment: done.")
	return nil
}

func truncateComment(body string) string {
	if len(body) <= MAX_COMMENT_LENGTH {
		return body
	}
	note := fmt.Sprintf("\n\n> ⚠️ Summary truncated, see %s in the run output for the full report.\n", SUMMARY_FILE_NAME)
	cut := MAX_COMMENT_LENGTH - len(note)
	// keep the cut on a line boundary
	if i := strings.LastIndexByte(body[:cut], '\n'); i > 0 {
		cut = i
	}
	return body[:cut] + note
}
