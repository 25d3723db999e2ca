package musik

import (
	"errors"
	"fmt"
)

// Kind classifies playback failures.
type Kind int

// Kinds of playback failures.
const (
	KindUnknown Kind = iota
	// KindDevice means the output device is unavailable or failed to
	// initialize.
	KindDevice
	// KindFile means the input file cannot be opened.
	KindFile
	// KindDecode means the input is not a recognized audio encoding.
	KindDecode
	// KindPlayback means the output failed while audio was playing.
	KindPlayback
)

// Sentinel errors matched by Error kinds.
var (
	ErrDevice   = errors.New("device init failed")
	ErrFile     = errors.New("open file failed")
	ErrDecode   = errors.New("decode failed")
	ErrPlayback = errors.New("playback failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDevice:
		return ErrDevice
	case KindFile:
		return ErrFile
	case KindDecode:
		return ErrDecode
	case KindPlayback:
		return ErrPlayback
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return "unknown failure"
}

// Error describes a failure of one of the playback steps.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// DeviceError wraps output device failure.
func DeviceError(err error) error {
	return &Error{Kind: KindDevice, Err: err}
}

// FileError wraps failure to access the file at path.
func FileError(path string, err error) error {
	return &Error{Kind: KindFile, Path: path, Err: err}
}

// DecodeError wraps failure to decode the file at path.
func DecodeError(path string, err error) error {
	return &Error{Kind: KindDecode, Path: path, Err: err}
}

// PlaybackError wraps failure of output during the run.
func PlaybackError(err error) error {
	return &Error{Kind: KindPlayback, Err: err}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of error kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of the first Error found in err chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrorRun is returned if runner was successfully started, but execution
// and/or flush failed.
type ErrorRun struct {
	ErrExec  error
	ErrFlush error
}

func (e *ErrorRun) Error() string {
	switch {
	case e.ErrExec != nil && e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v after execute error: %v", e.ErrFlush, e.ErrExec)
	case e.ErrExec != nil:
		return fmt.Sprintf("execute error: %v", e.ErrExec)
	case e.ErrFlush != nil:
		return fmt.Sprintf("flush error: %v", e.ErrFlush)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorRun) Is(err error) bool {
	if e.ErrExec != nil && errors.Is(e.ErrExec, err) {
		return true
	}
	if e.ErrFlush != nil && errors.Is(e.ErrFlush, err) {
		return true
	}
	return false
}

// Unwrap returns execution and flush errors.
func (e *ErrorRun) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.ErrExec != nil {
		errs = append(errs, e.ErrExec)
	}
	if e.ErrFlush != nil {
		errs = append(errs, e.ErrFlush)
	}
	return errs
}

// runError returns nil if both errors are nil.
func runError(exec, flush error) error {
	if exec == nil && flush == nil {
		return nil
	}
	return &ErrorRun{ErrExec: exec, ErrFlush: flush}
}
