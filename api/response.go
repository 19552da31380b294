package api

// Response is the uniform envelope every call returns. Exactly one of Data or
// Err is meaningful: Success true implies Data is set and Err is nil, Success
// false implies Err is non-nil.
type Response[T any] struct {
	Success bool
	Data    T
	Err     *Error
	// Message carries an informational message some endpoints attach to
	// successful responses.
	Message string
}

// Unwrap converts the envelope back into the usual Go (value, error) pair.
func (r Response[T]) Unwrap() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Data, nil
}

// OK builds a successful envelope around data.
func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// Fail builds a failed envelope. A nil err is replaced with a generic
// transport error so Success false always carries a non-empty reason.
func Fail[T any](err *Error) Response[T] {
	if err == nil {
		err = &Error{Kind: KindTransport, Message: "unknown error"}
	}
	return Response[T]{Err: err}
}

// FailFrom rewraps the failure of one envelope into another payload type.
func FailFrom[T, U any](r Response[U]) Response[T] {
	return Fail[T](r.Err)
}
