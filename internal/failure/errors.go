package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAFolder             = errors.New("not a folder")
	ErrSourceVanished         = errors.New("source vanished")
	ErrDestinationUnavailable = errors.New("destination unavailable")
	ErrPartialMove            = errors.New("partial move")
	ErrConfiguration          = errors.New("configuration error")
	ErrValidation             = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrDestinationUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, suitable for
// journaling and structured log fields. Unmarked errors report "error".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPartialMove):
		return "partial_move"
	case errors.Is(err, ErrSourceVanished):
		return "source_vanished"
	case errors.Is(err, ErrNotAFolder):
		return "not_a_folder"
	case errors.Is(err, ErrDestinationUnavailable):
		return "destination_unavailable"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "error"
	}
}

// Skippable reports whether err describes an item that disappeared or changed
// shape between enumeration and handling. Such items are skipped quietly.
func Skippable(err error) bool {
	return errors.Is(err, ErrNotAFolder) || errors.Is(err, ErrSourceVanished)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sortbox failure"
	}
	return strings.Join(parts, ": ")
}
