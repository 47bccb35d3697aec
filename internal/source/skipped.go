package source

import (
	"errors"
	"fmt"
)

// SkippedItem is a document element that could not become a record.
type SkippedItem struct {
	Index  int
	Reason string
}

// ItemsSkippedError reports elements dropped from an otherwise usable
// document. Fetch returns it together with the records that did decode.
type ItemsSkippedError struct {
	Items []SkippedItem
}

func (e *ItemsSkippedError) Error() string {
	if len(e.Items) == 1 {
		return fmt.Sprintf("item %d skipped: %s", e.Items[0].Index, e.Items[0].Reason)
	}
	return fmt.Sprintf("%d items skipped, first at %d: %s", len(e.Items), e.Items[0].Index, e.Items[0].Reason)
}

// Skipped returns the items err reports as skipped, if err is or wraps an
// ItemsSkippedError.
func Skipped(err error) ([]SkippedItem, bool) {
	var se *ItemsSkippedError
	if errors.As(err, &se) {
		return se.Items, true
	}
	return nil, false
}
