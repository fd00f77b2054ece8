// Package gitinfo implements the contribution lookup collaborator on top
// of a local git checkout.
package gitinfo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docpublish/internal/metadata"
)

// Provider resolves contribution data and repository URLs for files inside
// one git checkout. Safe for concurrent use; go-git repositories are
// read-only here.
type Provider struct {
	root string

	mu     sync.Mutex
	repo   *git.Repository
	remote string
	branch string
}

// NewProvider creates a provider rooted at the docset checkout directory.
func NewProvider(root string) *Provider {
	return &Provider{root: root}
}

func (p *Provider) open() (*git.Repository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.repo != nil {
		return p.repo, nil
	}

	repo, err := git.PlainOpenWithOptions(p.root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", p.root, err)
	}
	p.repo = repo

	if remote, err := repo.Remote("origin"); err == nil {
		urls := remote.Config().URLs
		if len(urls) > 0 {
			p.remote = normalizeRemoteURL(urls[0])
		}
	}
	if head, err := repo.Head(); err == nil {
		p.branch = head.Name().Short()
	}

	return repo, nil
}

// Contribution returns the last commit touching the file.
func (p *Provider) Contribution(_ context.Context, filePath string) (metadata.Contribution, error) {
	repo, err := p.open()
	if err != nil {
		return metadata.Contribution{}, err
	}

	rel := filepath.ToSlash(filePath)
	iter, err := repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return metadata.Contribution{}, fmt.Errorf("git log %s: %w", rel, err)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		return metadata.Contribution{}, fmt.Errorf("no commits for %s: %w", rel, err)
	}
	return contributionFromCommit(commit), nil
}

// GitURLs derives browse URLs for the file from the origin remote.
func (p *Provider) GitURLs(_ context.Context, filePath string) (metadata.GitURLs, error) {
	if _, err := p.open(); err != nil {
		return metadata.GitURLs{}, err
	}
	if p.remote == "" {
		return metadata.GitURLs{}, fmt.Errorf("repository at %s has no origin remote", p.root)
	}

	rel := filepath.ToSlash(filePath)
	branch := p.branch
	if branch == "" {
		branch = "main"
	}

	return metadata.GitURLs{
		ContentGitURL:                 fmt.Sprintf("%s/blob/%s/%s", p.remote, branch, rel),
		OriginalContentGitURL:         fmt.Sprintf("%s/blob/%s/%s", p.remote, branch, rel),
		OriginalContentGitURLTemplate: fmt.Sprintf("%s/blob/{branchName}/%s", p.remote, rel),
	}, nil
}

func contributionFromCommit(commit *object.Commit) metadata.Contribution {
	return metadata.Contribution{
		Author:    commit.Author.Name,
		UpdatedAt: commit.Author.When.UTC(),
		Commit:    commit.Hash.String(),
	}
}

// normalizeRemoteURL rewrites ssh-style remotes to https browse URLs and
// strips the .git suffix.
func normalizeRemoteURL(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")
	if strings.HasPrefix(remote, "git@") {
		remote = strings.TrimPrefix(remote, "git@")
		remote = "https://" + strings.Replace(remote, ":", "/", 1)
	}
	return remote
}
