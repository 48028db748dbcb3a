package router

import "errors"

// ErrNoAvailableModel indicates that no candidate model for a task is both
// configured and available. Fatal to the calling step; the router does not
// retry.
var ErrNoAvailableModel = errors.New("no available model for task")

// ErrUnknownModel indicates a task mapping referenced a model ID absent
// from the registry. This is a configuration error, not a runtime
// condition.
var ErrUnknownModel = errors.New("model not present in registry")
