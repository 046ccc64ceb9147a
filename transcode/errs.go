package transcode

import (
	"fmt"
	"strings"

	"github.com/signadot/tony-format/yq/format"
)

const (
	StageLoading = "loading"
	StageFilter  = "running filter"
)

// StageError names the pipeline stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("Error %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func convertingStage(f format.Format) string {
	return "converting JSON to " + strings.ToUpper(f.String())
}
