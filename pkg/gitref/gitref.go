package gitref

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Refspec identifies a source repository and a branch or ref,
// in the compact 'URL[@REF]' notation.
type Refspec struct {
	URL string
	Ref string
}

// Resolver resolves the default branch of a remote repository.
type Resolver interface {
	DefaultBranch(ctx context.Context, url string) (string, error)
}

// Parse splits a 'URL[@REF]' refspec. When no ref is given, the remote's
// default branch is resolved; an explicit ref never triggers a remote query.
func Parse(ctx context.Context, refspec string, resolver Resolver) (Refspec, error) {
	if url, ref, found := strings.Cut(refspec, "@"); found {
		return Refspec{URL: url, Ref: ref}, nil
	}

	branch, err := resolver.DefaultBranch(ctx, refspec)
	if err != nil {
		return Refspec{}, err
	}
	return Refspec{URL: refspec, Ref: branch}, nil
}

// ExecResolver shells out to git to query remote repositories.
type ExecResolver struct {
	git string
}

// NewExecResolver creates a resolver that runs the given git binary.
func NewExecResolver(git string) ExecResolver {
	if git == "" {
		git = "git"
	}
	return ExecResolver{git: git}
}

func (r ExecResolver) DefaultBranch(ctx context.Context, url string) (string, error) {
	cmd := exec.CommandContext(ctx, r.git, "ls-remote", "--symref", url, "HEAD")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
	}
	return parseHEADSymref(string(output), url)
}

const branchRefPrefix = "refs/heads/"

// parseHEADSymref extracts the branch name from 'git ls-remote --symref'
// output, expecting a line of the form 'ref: refs/heads/<branch>\tHEAD'.
func parseHEADSymref(output, url string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "ref:" || fields[2] != "HEAD" {
			continue
		}
		if !strings.HasPrefix(fields[1], branchRefPrefix) {
			return "", fmt.Errorf("unexpected HEAD reference %q for %s", fields[1], url)
		}
		return strings.TrimPrefix(fields[1], branchRefPrefix), nil
	}
	return "", fmt.Errorf("can't determine the default branch of %s", url)
}
