package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/temirov/allgit/internal/execshell"
	"github.com/temirov/allgit/internal/shared"
)

const (
	gitExecutorMissingMessageConstant          = "git executor not configured"
	discovererMissingMessageConstant           = "repository discoverer not configured"
	outputWriterMissingMessageConstant         = "output writer not configured"
	repositoryDiscoveryErrorTemplateConstant   = "failed to discover repositories: %w"
	gitFetchSubcommandConstant                 = "fetch"
	gitFetchAllFlagConstant                    = "--all"
	gitFetchPruneFlagConstant                  = "--prune"
	gitFetchTagsFlagConstant                   = "--tags"
	gitTerminalPromptEnvironmentNameConstant   = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant  = "0"
	expectedStderrLeadingTokenConstant         = "Fetching"
	bannerFillRuneConstant                     = '='
	bannerMinimumWidthConstant                 = 60
	bannerLabelTemplateConstant                = " %s "
	failureBlockTemplateConstant               = "command %s in %s failed with exit code %d.\nstdout: %s\nstderr: %s\n"
	transportFailureBlockTemplateConstant      = "command %s in %s could not run: %v\n"
	anomalousStderrTemplateConstant            = "%s\n"
	commandDisplayJoinSeparatorConstant        = " "
	newlineConstant                            = "\n"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrDiscovererNotConfigured indicates the repository discoverer dependency was missing.
var ErrDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)

// ErrOutputWriterNotConfigured indicates the output writer dependency was missing.
var ErrOutputWriterNotConfigured = errors.New(outputWriterMissingMessageConstant)

// Dependencies enumerates external collaborators required for batch fetching.
type Dependencies struct {
	GitExecutor  shared.GitExecutor
	Discoverer   shared.RepositoryDiscoverer
	OutputWriter io.Writer
}

// Options configures a batch fetch run.
type Options struct {
	Root        string
	WorkerCount int
}

// RepositoryOutcome captures the final fetch attempt for one repository.
type RepositoryOutcome struct {
	RepositoryPath string
	Result         execshell.ExecutionResult
	Failed         bool
	TransportError error
}

// Service fetches every discovered repository through a bounded worker pool.
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

// Run discovers repositories beneath the root, fetches each one concurrently,
// and reports outcomes in enumeration order. Individual fetch failures are
// reported but never abort the batch.
func (service *Service) Run(executionContext context.Context, options Options) error {
	repositories, discoveryError := service.discoverer.DiscoverRepositories(options.Root)
	if discoveryError != nil {
		return fmt.Errorf(repositoryDiscoveryErrorTemplateConstant, discoveryError)
	}

	workerCount := options.WorkerCount
	if workerCount < minimumWorkerCountConstant {
		workerCount = minimumWorkerCountConstant
	}
	if workerCount > len(repositories) && len(repositories) > 0 {
		workerCount = len(repositories)
	}

	outcomes := make([]RepositoryOutcome, len(repositories))
	repositoryIndexes := make(chan int)
	var workerGroup sync.WaitGroup

	for workerNumber := 0; workerNumber < workerCount; workerNumber++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for repositoryIndex := range repositoryIndexes {
				outcomes[repositoryIndex] = service.fetchRepository(executionContext, repositories[repositoryIndex])
			}
		}()
	}

	for repositoryIndex := range repositories {
		repositoryIndexes <- repositoryIndex
	}
	close(repositoryIndexes)
	workerGroup.Wait()

	service.reportOutcomes(outcomes)
	return nil
}

// fetchRepository runs the fetch once and retries exactly once on a non-zero
// exit status. The second attempt's result is final.
func (service *Service) fetchRepository(executionContext context.Context, repositoryPath string) RepositoryOutcome {
	outcome := RepositoryOutcome{RepositoryPath: repositoryPath}

	result, executionError := service.executeFetch(executionContext, repositoryPath)
	if executionError != nil {
		failedError := execshell.CommandFailedError{}
		if !errors.As(executionError, &failedError) {
			outcome.TransportError = executionError
			return outcome
		}
		result, executionError = service.executeFetch(executionContext, repositoryPath)
		if executionError != nil {
			if !errors.As(executionError, &failedError) {
				outcome.TransportError = executionError
				return outcome
			}
			outcome.Failed = true
		}
	}

	outcome.Result = result
	return outcome
}

func (service *Service) executeFetch(executionContext context.Context, repositoryPath string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        fetchArguments(),
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant,
		},
	})
}

func (service *Service) reportOutcomes(outcomes []RepositoryOutcome) {
	for _, outcome := range outcomes {
		fmt.Fprintln(service.outputWriter, formatRepositoryBanner(outcome.RepositoryPath))

		commandDisplay := commandDisplayString()
		switch {
		case outcome.TransportError != nil:
			fmt.Fprintf(service.outputWriter, transportFailureBlockTemplateConstant, commandDisplay, outcome.RepositoryPath, outcome.TransportError)
		case outcome.Failed:
			fmt.Fprintf(
				service.outputWriter,
				failureBlockTemplateConstant,
				commandDisplay,
				outcome.RepositoryPath,
				outcome.Result.ExitCode,
				outcome.Result.StandardOutput,
				outcome.Result.StandardError,
			)
		}

		if outcome.TransportError == nil && stderrLooksAnomalous(outcome.Result.StandardError) {
			fmt.Fprintf(service.outputWriter, anomalousStderrTemplateConstant, outcome.Result.StandardError)
		}
	}
}

// stderrLooksAnomalous reports whether any stderr line leads with a token other
// than the fetch progress marker. This is a heuristic over free-form output,
// not a structured parse; blank lines are ignored.
func stderrLooksAnomalous(standardError string) bool {
	if len(standardError) == 0 {
		return false
	}
	for _, line := range strings.Split(strings.TrimSuffix(standardError, newlineConstant), newlineConstant) {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] != expectedStderrLeadingTokenConstant {
			return true
		}
	}
	return false
}

func fetchArguments() []string {
	return []string{gitFetchSubcommandConstant, gitFetchAllFlagConstant, gitFetchPruneFlagConstant, gitFetchTagsFlagConstant}
}

func commandDisplayString() string {
	return strings.Join(append([]string{string(execshell.CommandGit)}, fetchArguments()...), commandDisplayJoinSeparatorConstant)
}

func formatRepositoryBanner(repositoryPath string) string {
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
