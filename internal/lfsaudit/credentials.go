package lfsaudit

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	gitCredentialSubcommandConstant     = "credential"
	gitCredentialFillSubcommandConstant = "fill"
	credentialFillInputTemplateConstant = "url=%s\n"
	credentialUsernamePrefixConstant    = "username="
	credentialPasswordPrefixConstant    = "password="
	credentialFillErrorTemplateConstant = "failed to fill credentials for %s: %w"
	credentialPromptEnvironmentName     = "GIT_TERMINAL_PROMPT"
	credentialPromptEnvironmentValue    = "0"
)

// CredentialResolver resolves an optional basic-auth credential for a remote URL.
//
// Alternate credential backends can be substituted without touching the probe loop.
type CredentialResolver interface {
	Resolve(executionContext context.Context, remoteURL string) (*Credential, error)
}

// GitCredentialHelper resolves credentials through the git credential-helper protocol.
type GitCredentialHelper struct {
	executor shared.GitExecutor
}

// NewGitCredentialHelper constructs a resolver backed by git credential fill.
func NewGitCredentialHelper(executor shared.GitExecutor) *GitCredentialHelper {
	return &GitCredentialHelper{executor: executor}
}

// Resolve fills credentials for the URL, returning nil when no complete pair is available.
func (helper *GitCredentialHelper) Resolve(executionContext context.Context, remoteURL string) (*Credential, error) {
	executionResult, executionError := helper.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:     []string{gitCredentialSubcommandConstant, gitCredentialFillSubcommandConstant},
		StandardInput: []byte(fmt.Sprintf(credentialFillInputTemplateConstant, remoteURL)),
		EnvironmentVariables: map[string]string{
			credentialPromptEnvironmentName: credentialPromptEnvironmentValue,
		},
	})
	if executionError != nil {
		return nil, fmt.Errorf(credentialFillErrorTemplateConstant, remoteURL, executionError)
	}

	var username string
	var password string
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		switch {
		case strings.HasPrefix(outputLine, credentialUsernamePrefixConstant):
			username = strings.TrimPrefix(outputLine, credentialUsernamePrefixConstant)
		case strings.HasPrefix(outputLine, credentialPasswordPrefixConstant):
			password = strings.TrimPrefix(outputLine, credentialPasswordPrefixConstant)
		}
	}

	if len(username) == 0 || len(password) == 0 {
		return nil, nil
	}
	return &Credential{Username: username, Password: password}, nil
}
