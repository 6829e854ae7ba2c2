package execshell

// CommandEventObserver is notified around every command the executor runs.
// Implementations must be safe for concurrent use when the executor is shared
// across workers.
type CommandEventObserver interface {
	// CommandStarted fires before the command is launched.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the command has terminated, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command could not be launched at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
