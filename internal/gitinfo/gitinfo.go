// Package gitinfo reads repository metadata used to seed a site
// configuration: the organization and project behind the origin remote and
// the base URL of the forge's "edit this page" view.
package gitinfo

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// DefaultRemote is the remote consulted by Detect.
const DefaultRemote = "origin"

// Info describes the checkout a site is built from.
type Info struct {
	Root         string
	Remote       string
	Branch       string
	Commit       string
	Host         string
	Organization string
	Project      string
	// EditURL is the forge edit view for the branch root, ending in "/".
	EditURL string
}

// Detect opens the repository containing dir and reads its origin remote,
// current branch and HEAD commit. A repository without an origin remote
// yields an Info with only the local fields set.
func Detect(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ferrors.GitError("not a git repository").
				WithContext(ferrors.ContextSource, dir).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to open repository").
			WithContext(ferrors.ContextSource, dir).Build()
	}

	info := &Info{}
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		info.Root = wt.Filesystem.Root()
	}

	if err := readHead(repo, info); err != nil {
		return nil, err
	}

	remote, err := repo.Remote(DefaultRemote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return info, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to read remote").
			WithContext(ferrors.ContextSource, DefaultRemote).Build()
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return info, nil
	}
	info.Remote = urls[0]
	host, org, project, ok := ParseRemote(info.Remote)
	if !ok {
		return info, nil
	}
	info.Host, info.Organization, info.Project = host, org, project
	info.EditURL = EditURL(host, org, project, info.Branch)
	return info, nil
}

// readHead fills Branch and Commit. An unborn branch has a name but no commit.
func readHead(repo *git.Repository, info *Info) error {
	head, err := repo.Head()
	if err == nil {
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
		info.Commit = head.Hash().String()
		return nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return ferrors.WrapError(err, ferrors.CategoryGit, "failed to resolve HEAD").Build()
	}
	ref, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryGit, "failed to read HEAD").Build()
	}
	if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
		info.Branch = ref.Target().Short()
	}
	return nil
}

// ParseRemote splits a remote URL into host, organization and project. It
// understands https, ssh:// and scp-like (git@host:org/project.git) forms.
// Nested groups are kept in the organization, "group/sub".
func ParseRemote(remote string) (host, org, project string, ok bool) {
	remote = strings.TrimSpace(remote)
	var p string
	switch {
	case strings.Contains(remote, "://"):
		u, err := url.Parse(remote)
		if err != nil || u.Host == "" {
			return "", "", "", false
		}
		host, p = u.Hostname(), u.Path
	case strings.Contains(remote, ":"):
		// scp-like syntax
		at := strings.LastIndex(remote[:strings.Index(remote, ":")], "@")
		rest := remote[at+1:]
		i := strings.Index(rest, ":")
		host, p = rest[:i], rest[i+1:]
	default:
		return "", "", "", false
	}
	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	i := strings.LastIndex(p, "/")
	if host == "" || i <= 0 || i == len(p)-1 {
		return "", "", "", false
	}
	return host, p[:i], p[i+1:], true
}

// EditURL returns the base edit URL for the forge at host. GitLab uses
// "/-/edit/", Bitbucket "/src/", and everything else the GitHub layout.
func EditURL(host, org, project, branch string) string {
	if branch == "" {
		branch = "main"
	}
	base := "https://" + host + "/" + org + "/" + project
	switch {
	case strings.Contains(host, "gitlab"):
		return base + "/-/edit/" + branch + "/"
	case strings.Contains(host, "bitbucket"):
		return base + "/src/" + branch + "/"
	default:
		return base + "/edit/" + branch + "/"
	}
}

// Apply seeds cfg with the detected identity: organizationName, projectName
// and the editUrl of every docs and blog preset.
func (i *Info) Apply(cfg *config.Config) {
	if i == nil || cfg == nil {
		return
	}
	if i.Organization != "" {
		cfg.OrganizationName = i.Organization
	}
	if i.Project != "" {
		cfg.ProjectName = i.Project
	}
	if i.EditURL == "" {
		return
	}
	for pi := range cfg.Presets {
		p := &cfg.Presets[pi]
		for _, co := range []*config.ContentOptions{p.Docs, p.Blog} {
			if co != nil {
				co.EditURL = i.EditURL
			}
		}
	}
}
