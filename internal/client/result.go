package client

// State tells which variant a Result holds
type State int

const (
	StateLoading State = iota
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Result is what repositories emit to observers: Loading, Success or Error.
// Cached marks a Success served from the local store before the network answered.
type Result[T any] struct {
	State  State
	Data   T
	Err    error
	Cached bool
}

func Loading[T any]() Result[T] {
	return Result[T]{State: StateLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{State: StateSuccess, Data: data}
}

func Error[T any](err error) Result[T] {
	return Result[T]{State: StateError, Err: err}
}

func cached[T any](data T) Result[T] {
	return Result[T]{State: StateSuccess, Data: data, Cached: true}
}
