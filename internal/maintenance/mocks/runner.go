package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock of maintenance.Runner. Variadic command
// arguments are matched as a single []string.
type MockRunner struct {
	mock.Mock
}

// NewMockRunner creates a mock that asserts its expectations when the test ends
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRunner {
	m := &MockRunner{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Run provides a mock function
func (m *MockRunner) Run(ctx context.Context, taskID, name string, args ...string) error {
	ret := m.Called(ctx, taskID, name, normalize(args))
	return ret.Error(0)
}

// RunPrivileged provides a mock function
func (m *MockRunner) RunPrivileged(ctx context.Context, taskID, name string, args ...string) error {
	ret := m.Called(ctx, taskID, name, normalize(args))
	return ret.Error(0)
}

// LookPath provides a mock function
func (m *MockRunner) LookPath(name string) (string, error) {
	ret := m.Called(name)
	return ret.String(0), ret.Error(1)
}

// Installed stubs LookPath so that exactly the given binaries are found
func (m *MockRunner) Installed(binaries ...string) *MockRunner {
	found := make(map[string]bool, len(binaries))
	for _, b := range binaries {
		found[b] = true
		m.On("LookPath", b).Return("/usr/bin/"+b, nil).Maybe()
	}
	m.On("LookPath", mock.MatchedBy(func(name string) bool { return !found[name] })).
		Return("", errNotFound).Maybe()
	return m
}

type notFoundError struct{}

func (notFoundError) Error() string { return "executable file not found in $PATH" }

var errNotFound error = notFoundError{}

func normalize(args []string) []string {
	if args == nil {
		return []string{}
	}
	return args
}
