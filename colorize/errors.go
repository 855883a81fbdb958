// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import "errors"

// Runtime Errors
var (
	errCouldNotStabilize = errors.New("Could not stabilize string while casefolding")
	errDecode            = errors.New("Stripped message is not valid text")
	errStringIsEmpty     = errors.New("String is empty")
	errUnknownColor      = errors.New("Highlight color could not be resolved")
)

// Config Errors
var (
	ErrDatastorePathMissing    = errors.New("Datastore path missing")
	ErrLoggerExcludeEmpty      = errors.New("Encountered logging type '-' with no type to exclude")
	ErrLoggerFilenameMissing   = errors.New("Logging configuration specifies 'file' method but 'filename' is empty")
	ErrLoggerHasNoTypes        = errors.New("Logger has no types to log")
	ErrMinNickLengthInvalid    = errors.New("min-nick-length must be between 1 and 20")
	ErrAffixesEmpty            = errors.New("nick-prefixes and nick-suffixes may not consist only of spaces")
	ErrMaxMessageLengthInvalid = errors.New("max-message-length must be at least 1 byte and below 2GiB")
)
