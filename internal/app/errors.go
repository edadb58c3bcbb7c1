package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoFileSelected     = errors.New("no selected file")
	ErrUnsupportedFile    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrParseFailed        = errors.New("failed to parse csv file")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
