package export

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAccepting is returned by ApplyFrame and Finish outside a session.
	ErrNotAccepting = errors.New("export: no session in progress, call Prepare first")
	// ErrSessionActive is returned by Prepare while a session is in progress.
	ErrSessionActive = errors.New("export: session already in progress, call Finish first")
)

// ArtifactError reports an output file that could not be written. The final
// path is never left half-written.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("export: write %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
