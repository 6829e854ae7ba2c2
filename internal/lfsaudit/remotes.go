package lfsaudit

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	gitRemoteSubcommandConstant        = "remote"
	gitRemoteGetURLSubcommandConstant  = "get-url"
	gitSuffixConstant                  = ".git"
	remoteListingErrorTemplateConstant = "failed to list remotes: %w"
	remoteURLErrorTemplateConstant     = "failed to resolve URL for remote %s: %w"
	newlineConstant                    = "\n"
)

// RemoteResolver resolves every configured remote to its verification URL and credential.
type RemoteResolver struct {
	executor    shared.GitExecutor
	credentials CredentialResolver
}

// NewRemoteResolver constructs a resolver from the executor and credential backend.
func NewRemoteResolver(executor shared.GitExecutor, credentials CredentialResolver) *RemoteResolver {
	return &RemoteResolver{executor: executor, credentials: credentials}
}

// ListRemotes resolves all configured remotes once per run.
//
// Remote URLs are normalized with a .git suffix so the verification endpoint
// path can be appended directly.
func (resolver *RemoteResolver) ListRemotes(executionContext context.Context, repositoryPath string) ([]Remote, error) {
	listingResult, listingError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if listingError != nil {
		return nil, fmt.Errorf(remoteListingErrorTemplateConstant, listingError)
	}

	var remotes []Remote
	for _, remoteName := range strings.Split(strings.TrimSpace(listingResult.StandardOutput), newlineConstant) {
		trimmedRemoteName := strings.TrimSpace(remoteName)
		if len(trimmedRemoteName) == 0 {
			continue
		}

		remote, resolveError := resolver.resolveRemote(executionContext, repositoryPath, trimmedRemoteName)
		if resolveError != nil {
			return nil, resolveError
		}
		remotes = append(remotes, remote)
	}
	return remotes, nil
}

func (resolver *RemoteResolver) resolveRemote(executionContext context.Context, repositoryPath string, remoteName string) (Remote, error) {
	urlResult, urlError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if urlError != nil {
		return Remote{}, fmt.Errorf(remoteURLErrorTemplateConstant, remoteName, urlError)
	}

	remoteURL := strings.TrimSpace(urlResult.StandardOutput)

	credential, credentialError := resolver.credentials.Resolve(executionContext, remoteURL)
	if credentialError != nil {
		return Remote{}, credentialError
	}

	if !strings.HasSuffix(remoteURL, gitSuffixConstant) {
		remoteURL += gitSuffixConstant
	}

	return Remote{Name: remoteName, URL: remoteURL, Credential: credential}, nil
}
