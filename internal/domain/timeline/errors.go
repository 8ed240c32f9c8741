package timeline

import "errors"

var (
	// ErrNoChange indicates a mutation would not alter the milestone. The
	// caller skips the write and no history entry is recorded.
	ErrNoChange = errors.New("timeline: value unchanged")

	// ErrCategoryInUse indicates a category cannot be deleted while
	// milestones still reference it.
	ErrCategoryInUse = errors.New("timeline: category is referenced by milestones")

	// ErrConfirmationRequired indicates a milestone delete was requested
	// without the explicit confirmation flag.
	ErrConfirmationRequired = errors.New("timeline: deletion requires confirmation")

	// ErrFileNotFound indicates the referenced associated file is not on
	// the milestone.
	ErrFileNotFound = errors.New("timeline: file not associated with milestone")
)
