package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteSurfacesCommandBuildFailures(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.buildError)

	wiringFailure := errors.New("command wiring failed")
	application.buildError = wiringFailure

	executionError := application.Execute()

	require.ErrorIs(testInstance, executionError, wiringFailure)
}
