package cliconfig

import "fmt"

type FileReadError struct {
	underlyingErr error
	path          string
}

func (err FileReadError) Error() string {
	return fmt.Sprintf("could not read config file %s: %s", err.path, err.underlyingErr)
}

func (err FileReadError) Unwrap() error {
	return err.underlyingErr
}

func NewFileReadError(path string, err error) *FileReadError {
	return &FileReadError{
		path:          path,
		underlyingErr: err,
	}
}

type DecodeError struct {
	underlyingErr error
	path          string
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("could not decode config file %s: %s", err.path, err.underlyingErr)
}

func (err DecodeError) Unwrap() error {
	return err.underlyingErr
}

func NewDecodeError(path string, err error) *DecodeError {
	return &DecodeError{
		path:          path,
		underlyingErr: err,
	}
}

type InvalidValueError struct {
	underlyingErr error
	key           string
	value         string
}

func (err InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q of config key %s: %s", err.value, err.key, err.underlyingErr)
}

func (err InvalidValueError) Unwrap() error {
	return err.underlyingErr
}

func NewInvalidValueError(key, value string, err error) *InvalidValueError {
	return &InvalidValueError{
		key:           key,
		value:         value,
		underlyingErr: err,
	}
}
