package models

// TimelineEvent is one dated milestone in an object's or component's history.
// Year is a free-form chronological label ("3500 BC", "1850s", "~1900");
// historical precision varies too much for a numeric type.
type TimelineEvent struct {
	Year        string `json:"year"`
	Event       string `json:"event"`
	Description string `json:"description"`
}

// Component is a material, technology or process that is part of an object's
// story. ConnectsAtYear names the year in the parent timeline where the
// component branches off. History holds 2 events at generation time and
// 5-6 after expansion, most recent first.
type Component struct {
	Name           string          `json:"name"`
	ConnectsAtYear string          `json:"connectsAtYear"`
	History        []TimelineEvent `json:"history"`
}

// ProvenanceResult is the full generated narrative for one scanned object.
type ProvenanceResult struct {
	Title      string          `json:"title"`
	Summary    string          `json:"summary"`
	Timeline   []TimelineEvent `json:"timeline"`
	Components []Component     `json:"components"`
}

// ComponentDetailResult is the expanded history for a single component.
type ComponentDetailResult struct {
	Name    string          `json:"name"`
	History []TimelineEvent `json:"history"`
}

// Scan is one saved analysis in the local history store.
type Scan struct {
	ID          string           `json:"id"`
	Timestamp   int64            `json:"timestamp"` // epoch millis
	ImageBase64 string           `json:"imageBase64"`
	Result      ProvenanceResult `json:"result"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Image string `json:"image"`
}

// ExpandRequest is the body of POST /api/expand.
type ExpandRequest struct {
	ComponentName string `json:"componentName"`
	ObjectTitle   string `json:"objectTitle"`
}
