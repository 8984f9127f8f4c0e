package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain failure")))
	assert.Equal(t, ExitUsage, ExitCode(withExitCode(ExitUsage, fmt.Errorf("kubectl missing"))))
	assert.Equal(t, ExitNoClient, ExitCode(withExitCode(ExitNoClient, fmt.Errorf("kubectl missing"))))

	wrapped := fmt.Errorf("outer: %w", withExitCode(ExitNoClient, fmt.Errorf("inner")))
	assert.Equal(t, ExitNoClient, ExitCode(wrapped))
}

func TestCleanupRequiresNamespaces(t *testing.T) {
	err := Execute([]string{"cleanup"}, nil)
	assert.Equal(t, ExitUsage, ExitCode(err))
}
