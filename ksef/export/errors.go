package export

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/Filip850/ksef-fetch-demo/ksef/model"
)

// ErrExportTimeout signals that an export job did not reach a terminal state
// within the polling wall-clock budget. Distinct from ExportError so callers
// can retry later instead of treating it as a platform rejection.
var ErrExportTimeout = errors.New("invoice export timed out")

// ExportError carries the terminal non-success status of an export job.
type ExportError struct {
	Status *model.ExportStatus
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("getting package failed with status %s", e.Status.Status)
}
