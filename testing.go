package edgert

import "sync"

// MockRunnable is a test double implementing task.Runnable, tracking
// call counts and letting callers inject a custom Step body. Useful for
// unit tests of the Engine lifecycle that need a runnable without
// pulling in real sensor/actuator logic.
type MockRunnable struct {
	mu sync.Mutex

	initCalls   int
	deinitCalls int
	stepCalls   int

	initErr   error
	deinitErr error

	stepFunc func()
}

// NewMockRunnable creates a runnable whose Init/Deinit succeed and whose
// Step is a no-op unless overridden with SetStepFunc.
func NewMockRunnable() *MockRunnable {
	return &MockRunnable{}
}

// Init implements task.Runnable.
func (m *MockRunnable) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return m.initErr
}

// Deinit implements task.Runnable.
func (m *MockRunnable) Deinit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deinitCalls++
	return m.deinitErr
}

// Step implements task.Runnable.
func (m *MockRunnable) Step() {
	m.mu.Lock()
	m.stepCalls++
	fn := m.stepFunc
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetStepFunc installs fn as the body Step invokes on every call.
func (m *MockRunnable) SetStepFunc(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stepFunc = fn
}

// SetInitErr makes the next Init call (and every call thereafter) return err.
func (m *MockRunnable) SetInitErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
}

// SetDeinitErr makes every Deinit call return err.
func (m *MockRunnable) SetDeinitErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deinitErr = err
}

// InitCalls returns how many times Init has been called.
func (m *MockRunnable) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

// DeinitCalls returns how many times Deinit has been called.
func (m *MockRunnable) DeinitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deinitCalls
}

// StepCalls returns how many times Step has been called.
func (m *MockRunnable) StepCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stepCalls
}
