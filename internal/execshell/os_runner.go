package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const environmentEntryTemplateConstant = "%s=%s"

// OSCommandRunner launches real subprocesses through os/exec.
//
// A non-zero exit is a successful run from the runner's perspective: the
// result carries the exit code and both streams, and classification is left
// to the executor. Only failures to launch surface as errors.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a subprocess-backed runner.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run launches the command and captures its streams until it terminates.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	subprocess := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	subprocess.Dir = command.Details.WorkingDirectory
	subprocess.Env = mergedEnvironment(command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	subprocess.Stdout = &standardOutputBuffer
	subprocess.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		subprocess.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := subprocess.Run()

	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}

	if runError != nil {
		exitError := &exec.ExitError{}
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		executionResult.ExitCode = exitError.ExitCode()
	}

	return executionResult, nil
}

// mergedEnvironment layers per-command variables over the inherited process
// environment. Nil input means inherit unchanged.
func mergedEnvironment(environmentVariables map[string]string) []string {
	environment := os.Environ()
	for environmentName, environmentValue := range environmentVariables {
		environment = append(environment, fmt.Sprintf(environmentEntryTemplateConstant, environmentName, environmentValue))
	}
	return environment
}
