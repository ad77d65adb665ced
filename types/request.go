package types

// CautionRequest is the body of the caution lookup endpoints.
type CautionRequest struct {
	Ingredients []string `json:"ingredients"`
}
