package palette

import (
	"errors"
	"fmt"

	"github.com/okian/biofitviz/internal/domain/model"
)

// Sentinel kinds for palette errors.
var (
	ErrUnknownPalette = errors.New("unknown palette")
	// ErrUnknownLabel is a data shape error: the label was not observed when
	// the palette was built.
	ErrUnknownLabel = fmt.Errorf("cluster label outside palette: %w", model.ErrDataShape)
)
