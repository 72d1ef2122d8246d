package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	"github.com/everstacklabs/blocksmith/internal/diff"
)

// createPR commits the output on a new branch and opens a GitHub PR for it.
func (p *Pipeline) createPR(ctx context.Context, cs *diff.ChangeSet, draft bool) (int, error) {
	branchName := fmt.Sprintf("blocksmith/together-%s", p.now().Format("20060102-150405"))
	title := fmt.Sprintf("chore(blocks): update Together AI blocks (%d changed)", cs.TotalChanged())

	gitOps, err := OpenRepo(p.cfg.OutputDir, p.cfg.GitHub.Token)
	if err != nil {
		return 0, err
	}

	if err := gitOps.CreateBranch(branchName); err != nil {
		return 0, fmt.Errorf("creating branch: %w", err)
	}

	if err := gitOps.AddAll(); err != nil {
		return 0, fmt.Errorf("staging changes: %w", err)
	}

	if err := gitOps.Commit(title, p.now()); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	if err := gitOps.Push(branchName); err != nil {
		return 0, fmt.Errorf("pushing: %w", err)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.cfg.GitHub.Token})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	body := diff.RenderPRBody(cs)
	pr, _, err := client.PullRequests.Create(ctx, p.cfg.GitHub.Owner, p.cfg.GitHub.Repo, &github.NewPullRequest{
		Title: &title,
		Body:  &body,
		Head:  &branchName,
		Base:  &p.cfg.GitHub.BaseBranch,
		Draft: &draft,
	})
	if err != nil {
		return 0, fmt.Errorf("creating PR: %w", err)
	}

	slog.Info("PR created",
		"number", pr.GetNumber(),
		"draft", draft,
		"url", pr.GetHTMLURL())

	return pr.GetNumber(), nil
}
