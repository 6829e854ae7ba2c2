package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	gitExecutorMissingMessageConstant        = "git executor not configured"
	discovererMissingMessageConstant         = "repository discoverer not configured"
	outputWriterMissingMessageConstant       = "output writer not configured"
	repositoryDiscoveryErrorTemplateConstant = "failed to discover repositories: %w"
	historyQueryErrorTemplateConstant        = "history query failed in %s: %w"
	branchListingErrorTemplateConstant       = "branch listing failed in %s: %w"
	passthroughErrorTemplateConstant         = "git %s failed in %s: %w"
	gitLogSubcommandConstant                 = "log"
	gitLogColorFlagConstant                  = "--color"
	gitLogOnelineFlagConstant                = "--oneline"
	gitLogRemotesFlagConstant                = "--remotes"
	gitLogFirstParentFlagConstant            = "--first-parent"
	gitLogGraphFlagConstant                  = "--graph"
	gitLogAuthorFlagTemplateConstant         = "--author=%s"
	gitLogAfterFlagTemplateConstant          = "--after=%s"
	gitLogBeforeFlagTemplateConstant         = "--before=%s"
	gitBranchSubcommandConstant              = "branch"
	gitBranchVerboseFlagConstant             = "-vvv"
	goneUpstreamMarkerConstant               = ": gone] "
	logBannerTemplateConstant                = "===== %s =====\n"
	goneBranchLineTemplateConstant           = "\t- %s\n"
	outputLineTemplateConstant               = "%s\n"
	bannerLabelTemplateConstant              = " %s "
	bannerFillRuneConstant                   = '='
	bannerMinimumWidthConstant               = 60
	commandDisplayJoinSeparatorConstant      = " "
	newlineConstant                          = "\n"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrDiscovererNotConfigured indicates the repository discoverer dependency was missing.
var ErrDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)

// ErrOutputWriterNotConfigured indicates the output writer dependency was missing.
var ErrOutputWriterNotConfigured = errors.New(outputWriterMissingMessageConstant)

// Dependencies enumerates external collaborators required for history queries.
type Dependencies struct {
	GitExecutor  shared.GitExecutor
	Discoverer   shared.RepositoryDiscoverer
	OutputWriter io.Writer
}

// LogOptions filters a batch history query.
type LogOptions struct {
	Root   string
	Author string
	Range  TimeRange
}

// Service runs read-only history queries across every discovered repository.
//
// Unlike the fetch runner, any non-zero git exit aborts the whole batch: these
// queries are expected to always succeed against a valid checkout, so failure
// indicates a real problem worth stopping for.
type Service struct {
	executor     shared.GitExecutor
	discoverer   shared.RepositoryDiscoverer
	outputWriter io.Writer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.OutputWriter == nil {
		return nil, ErrOutputWriterNotConfigured
	}
	return &Service{
		executor:     dependencies.GitExecutor,
		discoverer:   dependencies.Discoverer,
		outputWriter: dependencies.OutputWriter,
	}, nil
}

// PrintLogs runs the filtered log query per repository, printing non-empty results under a banner.
func (service *Service) PrintLogs(executionContext context.Context, options LogOptions) error {
	logArguments := buildLogArguments(options)

	return service.forEachRepository(options.Root, func(repositoryPath string) error {
		executionResult, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        logArguments,
			WorkingDirectory: repositoryPath,
		})
		if executionError != nil {
			return fmt.Errorf(historyQueryErrorTemplateConstant, repositoryPath, executionError)
		}

		trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
		if len(trimmedOutput) == 0 {
			return nil
		}

		fmt.Fprintf(service.outputWriter, logBannerTemplateConstant, repositoryPath)
		fmt.Fprintf(service.outputWriter, outputLineTemplateConstant, trimmedOutput)
		return nil
	})
}

// PrintGoneBranches lists local branches whose upstream is reported gone, per repository.
func (service *Service) PrintGoneBranches(executionContext context.Context, root string) error {
	return service.forEachRepository(root, func(repositoryPath string) error {
		executionResult, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitBranchSubcommandConstant, gitBranchVerboseFlagConstant},
			WorkingDirectory: repositoryPath,
		})
		if executionError != nil {
			return fmt.Errorf(branchListingErrorTemplateConstant, repositoryPath, executionError)
		}

		var goneBranchLines []string
		for _, branchLine := range strings.Split(strings.TrimSpace(executionResult.StandardOutput), newlineConstant) {
			if strings.Contains(branchLine, goneUpstreamMarkerConstant) {
				goneBranchLines = append(goneBranchLines, branchLine)
			}
		}
		if len(goneBranchLines) == 0 {
			return nil
		}

		fmt.Fprintf(service.outputWriter, logBannerTemplateConstant, repositoryPath)
		for _, branchLine := range goneBranchLines {
			fmt.Fprintf(service.outputWriter, goneBranchLineTemplateConstant, branchLine)
		}
		return nil
	})
}

// RunPassthrough prefixes the supplied argument vector with git and runs it per repository.
func (service *Service) RunPassthrough(executionContext context.Context, root string, arguments []string) error {
	argumentDisplay := strings.Join(arguments, commandDisplayJoinSeparatorConstant)

	return service.forEachRepository(root, func(repositoryPath string) error {
		fmt.Fprintf(service.outputWriter, outputLineTemplateConstant, formatCenteredBanner(repositoryPath))

		executionResult, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        append([]string{}, arguments...),
			WorkingDirectory: repositoryPath,
		})
		if executionError != nil {
			return fmt.Errorf(passthroughErrorTemplateConstant, argumentDisplay, repositoryPath, executionError)
		}

		trimmedOutput := strings.TrimSpace(executionResult.StandardOutput)
		if len(trimmedOutput) > 0 {
			fmt.Fprintf(service.outputWriter, outputLineTemplateConstant, trimmedOutput)
		}
		return nil
	})
}

func (service *Service) forEachRepository(root string, visit func(repositoryPath string) error) error {
	repositories, discoveryError := service.discoverer.DiscoverRepositories(root)
	if discoveryError != nil {
		return fmt.Errorf(repositoryDiscoveryErrorTemplateConstant, discoveryError)
	}

	for _, repositoryPath := range repositories {
		if visitError := visit(repositoryPath); visitError != nil {
			return visitError
		}
	}
	return nil
}

func buildLogArguments(options LogOptions) []string {
	logArguments := []string{
		gitLogSubcommandConstant,
		gitLogColorFlagConstant,
		gitLogOnelineFlagConstant,
		gitLogRemotesFlagConstant,
		gitLogFirstParentFlagConstant,
		gitLogGraphFlagConstant,
	}

	if len(options.Author) > 0 {
		logArguments = append(logArguments, fmt.Sprintf(gitLogAuthorFlagTemplateConstant, options.Author))
	}
	if !options.Range.After.IsZero() {
		logArguments = append(logArguments, fmt.Sprintf(gitLogAfterFlagTemplateConstant, options.Range.After.Format(time.ANSIC)))
	}
	if !options.Range.Before.IsZero() {
		logArguments = append(logArguments, fmt.Sprintf(gitLogBeforeFlagTemplateConstant, options.Range.Before.Format(time.ANSIC)))
	}

	return logArguments
}

func formatCenteredBanner(repositoryPath string) string {
	label := fmt.Sprintf(bannerLabelTemplateConstant, repositoryPath)
	bannerWidth := len(label) + 4
	if bannerWidth < bannerMinimumWidthConstant {
		bannerWidth = bannerMinimumWidthConstant
	}

	fillWidth := bannerWidth - len(label)
	leadingFill := fillWidth / 2
	trailingFill := fillWidth - leadingFill
	return strings.Repeat(string(bannerFillRuneConstant), leadingFill) + label + strings.Repeat(string(bannerFillRuneConstant), trailingFill)
}
