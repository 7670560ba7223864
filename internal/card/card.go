package card

// Record represents a drawn playing card in display form
type Record struct {
	ID       int    `json:"id"`       // Position index within one draw, not stable across draws
	Name     string `json:"name"`     // "<value> of <suit>", e.g. "ACE of SPADES"
	ImageURL string `json:"imageUrl"` // Card face image
}
