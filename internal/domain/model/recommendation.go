package model

// Price is an optional store price, in minor currency units.
type Price struct {
	Currency        string `json:"currency" yaml:"currency"`
	Initial         int64  `json:"initial" yaml:"initial"`
	Final           int64  `json:"final" yaml:"final"`
	DiscountPercent int    `json:"discount_percent" yaml:"discount_percent"`
}

// CandidateTitle is a catalog entry that may be recommended.
type CandidateTitle struct {
	ID     int64    `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Genres []string `json:"genres,omitempty" yaml:"genres"`
	Tags   []string `json:"tags,omitempty" yaml:"tags"`
	Price  *Price   `json:"price,omitempty" yaml:"price"`
}

// Reason is the structured justification handed to a text generator.
type Reason struct {
	// Shared lists every label the candidate shares with the user, by weight.
	Shared []LabelWeight `json:"shared"`
	// SharedCount and LabelCount give the overlap over the candidate's labels.
	SharedCount int     `json:"shared_count"`
	LabelCount  int     `json:"label_count"`
	Coverage    float64 `json:"coverage"`
}

// ScoredRecommendation is a ranked candidate. Never mutated after scoring.
type ScoredRecommendation struct {
	Candidate     CandidateTitle `json:"candidate"`
	Score         float64        `json:"score"`
	MatchedLabels []string       `json:"matched_labels"`
	Reason        Reason         `json:"reason"`
}

// Report is the assembled analysis payload.
type Report struct {
	PrimaryLabel    Label                  `json:"primary_label"`
	SecondaryLabels []Label                `json:"secondary_labels"`
	TopGenres       []LabelWeight          `json:"top_genres"`
	Recommendations []ScoredRecommendation `json:"recommendations"`
}
