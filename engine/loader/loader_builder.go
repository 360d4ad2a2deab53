package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets the number of decode workers.
// Values below 1 are raised to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithQueueSize is an option builder that sets how many requests may wait for a worker
// before Request blocks.
//
// Parameters:
//   - n: the task queue capacity
//
// Returns:
//   - LoaderBuilderOption: a function that applies the queue size option to a loader
func WithQueueSize(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.queueSize = max(n, 1)
	}
}

// WithResponseBuffer is an option builder that sets the capacity of the response channel.
//
// Parameters:
//   - n: the channel capacity
//
// Returns:
//   - LoaderBuilderOption: a function that applies the buffer option to a loader
func WithResponseBuffer(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.bufferSize = max(n, 0)
	}
}

// WithBackend is an option builder that routes every request to b regardless of extension.
//
// Parameters:
//   - b: the decode function
//
// Returns:
//   - LoaderBuilderOption: a function that applies the backend option to a loader
func WithBackend(b BackendFunc) LoaderBuilderOption {
	return func(l *loader) {
		if b != nil {
			l.fallback = b
		}
	}
}
