package roster

// Stats summarizes a roster snapshot for display.
type Stats struct {
	Total          int     `json:"total"`
	Validated      int     `json:"validated"`
	Processing     int     `json:"processing"`
	Success        int     `json:"success"`
	Error          int     `json:"error"`
	Remaining      int     `json:"remaining"`
	ValidationRate float64 `json:"validation_rate"`
	SuccessRate    float64 `json:"success_rate"`
}

// ComputeStats derives counters from a roster snapshot. Processing counts
// only redemption work, not validation lookups. Remaining is the number of
// validated accounts a running redemption round has not reached yet.
func ComputeStats(accounts []Account) Stats {
	s := Stats{Total: len(accounts)}
	for _, acc := range accounts {
		if acc.Validated {
			s.Validated++
		}
		switch acc.Status {
		case StatusProcessing:
			s.Processing++
		case StatusSuccess:
			s.Success++
		case StatusError:
			s.Error++
		}
		if acc.Validated && acc.Status != StatusProcessing && acc.Status != StatusSuccess && acc.Status != StatusError {
			s.Remaining++
		}
	}
	if s.Total > 0 {
		s.ValidationRate = float64(s.Validated) / float64(s.Total) * 100
	}
	if s.Validated > 0 {
		s.SuccessRate = float64(s.Success) / float64(s.Validated) * 100
	}
	return s
}
