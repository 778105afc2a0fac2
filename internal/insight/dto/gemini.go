package dto

// GeminiAPIRequest is the request payload for the Gemini API.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content represents the content of a request or response.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a part of the content.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the response from the Gemini API.
type GeminiAPIResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is a candidate response from the Gemini API.
type Candidate struct {
	Content Content `json:"content"`
}

// AnalysisVerdict is the JSON structure the model is instructed to return.
type AnalysisVerdict struct {
	Signal        string   `json:"signal"`
	BuyPercentage int      `json:"buy_percentage"`
	Reasoning     string   `json:"reasoning"`
	EODMovement   *float64 `json:"eod_movement,omitempty"`
	Confidence    float64  `json:"confidence"`
	KeyPoints     []string `json:"key_points,omitempty"`
}
