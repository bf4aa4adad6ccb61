package models

import "errors"

var (
	// ErrUnknownModel is returned when an operation targets a model id the
	// registry does not know.
	ErrUnknownModel = errors.New("unknown model")

	// ErrModelNotDownloaded is returned when a load is attempted before the
	// model's artifacts are on disk.
	ErrModelNotDownloaded = errors.New("model is not downloaded")

	// ErrNoActiveSession is returned when an operation requires a loaded
	// model and none is loaded.
	ErrNoActiveSession = errors.New("no model is loaded")

	// ErrNoDownloader is returned when Download is called without a
	// configured downloader.
	ErrNoDownloader = errors.New("no downloader configured")

	// ErrNoRuntime is returned when Load is called without a configured
	// inference runtime.
	ErrNoRuntime = errors.New("no inference runtime configured")
)
