package musik

import "strings"

// execErrors wraps errors that might occure when multiple runners
// are failing.
type execErrors []error

func (e execErrors) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Unwrap allows errors.Is and errors.As to check every runner error.
func (e execErrors) Unwrap() []error {
	return e
}

// ret returns untyped nil if error is list is empty and the only error
// if there is just one.
func (e execErrors) ret() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return e
}
