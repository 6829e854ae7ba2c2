package lfsaudit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	gitRevListSubcommandConstant         = "rev-list"
	gitRevListAllFlagConstant            = "--all"
	gitGrepSubcommandConstant            = "grep"
	gitGrepTextFlagConstant              = "--text"
	gitGrepFixedStringsFlagConstant      = "--fixed-strings"
	gitLogSubcommandConstant             = "log"
	gitLogSummaryFormatFlagConstant      = "--format=%H %an %s"
	gitLogSingleCommitFlagConstant       = "-1"
	pathspecSeparatorConstant            = "--"
	revisionListingErrorTemplateConstant = "failed to list revisions touching %s: %w"
	historyGrepErrorTemplateConstant     = "failed to search history for %s: %w"
	commitSummaryErrorTemplateConstant   = "failed to summarize commit %s: %w"
	grepMatchSeparatorConstant           = ":"
	grepNoMatchExitCodeConstant          = 1
)

// CommitLocator finds the commits whose trees reference a given pointer.
//
// Revision listings are memoized per pointer name because many pointers share
// a path across history.
type CommitLocator struct {
	executor        shared.GitExecutor
	revisionsByName map[string][]string
}

// NewCommitLocator constructs a locator with an empty revision memo.
func NewCommitLocator(executor shared.GitExecutor) *CommitLocator {
	return &CommitLocator{executor: executor, revisionsByName: map[string][]string{}}
}

// CommitsReferencing returns every commit whose version of the pointer's file
// carries the exact pointer marker text.
func (locator *CommitLocator) CommitsReferencing(executionContext context.Context, repositoryPath string, pointer Pointer) ([]string, error) {
	revisions, revisionsError := locator.revisionsTouching(executionContext, repositoryPath, pointer.Name)
	if revisionsError != nil {
		return nil, revisionsError
	}
	if len(revisions) == 0 {
		return nil, nil
	}

	grepArguments := []string{gitGrepSubcommandConstant, gitGrepTextFlagConstant, gitGrepFixedStringsFlagConstant, pointer.GrepExpression()}
	grepArguments = append(grepArguments, revisions...)
	grepArguments = append(grepArguments, pathspecSeparatorConstant, pointer.Name)

	grepResult, grepError := locator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        grepArguments,
		WorkingDirectory: repositoryPath,
	})
	if grepError != nil {
		// git grep exits 1 when nothing matches; that is an empty result, not a failure.
		failedError := execshell.CommandFailedError{}
		if errors.As(grepError, &failedError) && failedError.Result.ExitCode == grepNoMatchExitCodeConstant && len(strings.TrimSpace(failedError.Result.StandardError)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf(historyGrepErrorTemplateConstant, pointer.Name, grepError)
	}

	var commits []string
	for _, matchLine := range strings.Split(strings.TrimSpace(grepResult.StandardOutput), "\n") {
		if len(matchLine) == 0 {
			continue
		}
		commitIdentifier, _, separatorFound := strings.Cut(matchLine, grepMatchSeparatorConstant)
		if separatorFound {
			commits = append(commits, commitIdentifier)
		}
	}
	return commits, nil
}

// SummarizeCommit returns the commit's one-line hash, author, and subject summary.
func (locator *CommitLocator) SummarizeCommit(executionContext context.Context, repositoryPath string, commitIdentifier string) (string, error) {
	summaryResult, summaryError := locator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitLogSummaryFormatFlagConstant, gitLogSingleCommitFlagConstant, commitIdentifier},
		WorkingDirectory: repositoryPath,
	})
	if summaryError != nil {
		return "", fmt.Errorf(commitSummaryErrorTemplateConstant, commitIdentifier, summaryError)
	}
	return strings.TrimSpace(summaryResult.StandardOutput), nil
}

func (locator *CommitLocator) revisionsTouching(executionContext context.Context, repositoryPath string, pointerName string) ([]string, error) {
	if revisions, alreadyListed := locator.revisionsByName[pointerName]; alreadyListed {
		return revisions, nil
	}

	listingResult, listingError := locator.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevListSubcommandConstant, gitRevListAllFlagConstant, pathspecSeparatorConstant, pointerName},
		WorkingDirectory: repositoryPath,
	})
	if listingError != nil {
		return nil, fmt.Errorf(revisionListingErrorTemplateConstant, pointerName, listingError)
	}

	var revisions []string
	for _, revisionLine := range strings.Split(strings.TrimSpace(listingResult.StandardOutput), "\n") {
		trimmedRevision := strings.TrimSpace(revisionLine)
		if len(trimmedRevision) > 0 {
			revisions = append(revisions, trimmedRevision)
		}
	}

	locator.revisionsByName[pointerName] = revisions
	return revisions, nil
}
