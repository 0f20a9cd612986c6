package dataset

import (
	"errors"
	"fmt"

	"github.com/okian/biofitviz/internal/domain/model"
)

// Sentinel kinds for dataset errors.
var (
	// ErrMissingColumn and ErrMissingTable are structural and abort the load.
	ErrMissingColumn = fmt.Errorf("missing required column: %w", model.ErrDataShape)
	ErrMissingTable  = fmt.Errorf("missing required table: %w", model.ErrDataShape)
	ErrOpen          = errors.New("dataset open failed")
)
