package inference

type (
	Options struct {
		WaitForModel bool `json:"wait_for_model,omitempty"`
	}

	ClassificationRequest struct {
		Inputs  string   `json:"inputs"`
		Options *Options `json:"options,omitempty"`
	}

	Label struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}

	errorResponse struct {
		Error         string  `json:"error"`
		EstimatedTime float64 `json:"estimated_time"`
	}
)
