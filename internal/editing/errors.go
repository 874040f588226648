package editing

import (
	"fmt"

	"github.com/otter-ide/otter/internal/apperror"
)

func errNotOpen(path string) error {
	return apperror.NotOpenOrNotAttached(fmt.Sprintf("buffer %s", path)).
		WithSuggestions("open the file with read_file or buffer_info first")
}
