package domain

import "errors"

// ErrStateNotFound is returned by a StateStore when no bag exists under a key.
var ErrStateNotFound = errors.New("state not found")

// ErrMissingScope is returned when an activity lacks the ids needed to build a scope key.
var ErrMissingScope = errors.New("activity is missing scope identifiers")

// ErrDialogNotFound is returned when a dialog id is not registered in the set.
var ErrDialogNotFound = errors.New("dialog not found")

// ErrPromptNotFound is returned when a step suspends on a prompt that is not registered.
var ErrPromptNotFound = errors.New("prompt not found")

// ErrInvalidTransition is returned when a run is driven through a transition its phase does not allow.
var ErrInvalidTransition = errors.New("invalid dialog transition")

// ErrAssetNotFound is returned when an AssetLoader has no asset with the requested id.
var ErrAssetNotFound = errors.New("asset not found")

// ErrUnknownPolicy is returned for an unsupported email acceptance policy.
var ErrUnknownPolicy = errors.New("unknown email acceptance policy")
