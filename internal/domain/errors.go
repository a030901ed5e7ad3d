package domain

import "errors"

var (
	// ErrRegistryUnavailable means the container runtime API could not be reached.
	ErrRegistryUnavailable = errors.New("container registry unavailable")
	// ErrContainerVanished means a container disappeared between listing and inspection.
	ErrContainerVanished = errors.New("container vanished")
	ErrFileMissing       = errors.New("hosts file missing")
	ErrIOFailure         = errors.New("hosts file i/o failure")
	ErrConfigMalformed   = errors.New("malformed configuration")
)
