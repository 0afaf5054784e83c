package eventstore

import (
	"git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

var (
	// ErrOpenFailed indicates the history database could not be opened.
	ErrOpenFailed = errors.HistoryError("could not open build history database").Build()

	// ErrSchemaFailed indicates the history schema could not be created.
	ErrSchemaFailed = errors.HistoryError("failed to initialize build history schema").Build()

	// ErrAppendFailed indicates appending an event failed.
	ErrAppendFailed = errors.HistoryError("failed to append build event").Build()

	// ErrQueryFailed indicates reading events failed.
	ErrQueryFailed = errors.HistoryError("failed to query build events").Build()

	// ErrPayloadFailed indicates an event payload could not be encoded or decoded.
	ErrPayloadFailed = errors.HistoryError("failed to encode build event payload").Build()
)

func wrap(sentinel *errors.ClassifiedError, err error) error {
	return errors.WrapError(err, sentinel.Category(), sentinel.Message()).WithSeverity(sentinel.Severity()).Build()
}
