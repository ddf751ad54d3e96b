package backup

import "fmt"

// FileFailure records one file that could not be captured or restored.
type FileFailure struct {
	Path string
	Err  error
}

// PartialIOError reports per-file failures from a capture or restore that
// otherwise completed. It enables typed discrimination via errors.As so
// callers can distinguish a partial success from a total failure.
type PartialIOError struct {
	Op       string // "capture" or "restore"
	Failures []FileFailure
}

func (e *PartialIOError) Error() string {
	return fmt.Sprintf("%s completed with %d file failure(s), first: %s: %v",
		e.Op, len(e.Failures), e.Failures[0].Path, e.Failures[0].Err)
}
