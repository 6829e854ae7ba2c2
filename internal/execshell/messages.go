package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	currentDirectoryLabelConstant           = "current directory"
)

const (
	gitFetchSubcommandNameConstant      = "fetch"
	gitLogSubcommandNameConstant        = "log"
	gitRemoteSubcommandNameConstant     = "remote"
	gitCredentialSubcommandNameConstant = "credential"
	gitLFSSubcommandNameConstant        = "lfs"
)

const (
	gitFetchStartTemplateConstant                 = "Fetching updates in %s"
	gitFetchSuccessTemplateConstant               = "Fetched updates in %s"
	gitFetchFailureTemplateConstant               = "Failed to fetch updates in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant      = "Unable to fetch updates in %s: %s"
	gitLogStartTemplateConstant                   = "Collecting history in %s"
	gitLogSuccessTemplateConstant                 = "Collected history in %s"
	gitLogFailureTemplateConstant                 = "Failed to collect history in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant        = "Unable to collect history in %s: %s"
	gitRemoteStartTemplateConstant                = "Inspecting remotes in %s"
	gitRemoteSuccessTemplateConstant              = "Inspected remotes in %s"
	gitRemoteFailureTemplateConstant              = "Failed to inspect remotes in %s (exit code %d%s)"
	gitRemoteExecutionFailureTemplateConstant     = "Unable to inspect remotes in %s: %s"
	gitCredentialStartTemplateConstant            = "Resolving credentials in %s"
	gitCredentialSuccessTemplateConstant          = "Resolved credentials in %s"
	gitCredentialFailureTemplateConstant          = "Failed to resolve credentials in %s (exit code %d%s)"
	gitCredentialExecutionFailureTemplateConstant = "Unable to resolve credentials in %s: %s"
	gitLFSStartTemplateConstant                   = "Listing large file pointers in %s"
	gitLFSSuccessTemplateConstant                 = "Listed large file pointers in %s"
	gitLFSFailureTemplateConstant                 = "Failed to list large file pointers in %s (exit code %d%s)"
	gitLFSExecutionFailureTemplateConstant        = "Unable to list large file pointers in %s: %s"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

type stagedMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var gitSubcommandMessageTemplates = map[string]stagedMessageTemplates{
	gitFetchSubcommandNameConstant: {
		start:            gitFetchStartTemplateConstant,
		success:          gitFetchSuccessTemplateConstant,
		failure:          gitFetchFailureTemplateConstant,
		executionFailure: gitFetchExecutionFailureTemplateConstant,
	},
	gitLogSubcommandNameConstant: {
		start:            gitLogStartTemplateConstant,
		success:          gitLogSuccessTemplateConstant,
		failure:          gitLogFailureTemplateConstant,
		executionFailure: gitLogExecutionFailureTemplateConstant,
	},
	gitRemoteSubcommandNameConstant: {
		start:            gitRemoteStartTemplateConstant,
		success:          gitRemoteSuccessTemplateConstant,
		failure:          gitRemoteFailureTemplateConstant,
		executionFailure: gitRemoteExecutionFailureTemplateConstant,
	},
	gitCredentialSubcommandNameConstant: {
		start:            gitCredentialStartTemplateConstant,
		success:          gitCredentialSuccessTemplateConstant,
		failure:          gitCredentialFailureTemplateConstant,
		executionFailure: gitCredentialExecutionFailureTemplateConstant,
	},
	gitLFSSubcommandNameConstant: {
		start:            gitLFSStartTemplateConstant,
		success:          gitLFSSuccessTemplateConstant,
		failure:          gitLFSFailureTemplateConstant,
		executionFailure: gitLFSExecutionFailureTemplateConstant,
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle logging.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that exited successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)
		if templates, templatesExist := gitSubcommandMessageTemplates[subcommand]; templatesExist {
			return formatter.buildStagedMessage(command, result, failure, stage, templates)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) buildStagedMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stagedMessageTemplates) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return currentDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}
