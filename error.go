package main

import "errors"

var (
	ErrCouldNotResolvePath = errors.New("could not resolve path")
	ErrUnknownRootKind     = errors.New("root kind must be model or ingestion")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrMissingArgument     = errors.New("missing argument")
	ErrUnknownCommand      = errors.New("command not recognised")
)
