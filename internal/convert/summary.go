package convert

// Status classifies a whole batch run.
type Status string

const (
	// StatusOK means every acquired job succeeded.
	StatusOK Status = "ok"
	// StatusPartial means at least one job failed and was requeued.
	StatusPartial Status = "partial"
	// StatusNothingToDo means no job could be acquired: intake was empty or
	// every entry was claimed by another worker.
	StatusNothingToDo Status = "nothing-to-do"
)

// Summary reports batch counts with stable field names for callers.
type Summary struct {
	Status          Status `json:"status"`
	Acquired        int    `json:"acquired"`
	Successes       int    `json:"successes"`
	Failures        int    `json:"failures"`
	SkippedExisting int    `json:"skipped_existing"`
}

func (s Summary) finish() Summary {
	switch {
	case s.Acquired == 0:
		s.Status = StatusNothingToDo
	case s.Failures > 0:
		s.Status = StatusPartial
	default:
		s.Status = StatusOK
	}
	return s
}
