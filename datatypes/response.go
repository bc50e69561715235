package datatypes

// Response status values. Business failures are always communicated as
// StatusRefusal inside an HTTP 200, never as an HTTP error code.
const (
	StatusAnswer  = "answer"
	StatusRefusal = "refusal"
)

// error_type taxonomy for QueryResponse. Empty means full success.
const (
	ErrTypeTranslationFailure = "translation_failure"
	ErrTypeRetrievalFailure   = "retrieval_failure"
	ErrTypeLLMUnavailable     = "llm_unavailable"
	ErrTypeHighRiskRefusal    = "high_risk_refusal"
	ErrTypeValidationRefusal  = "validation_refusal"
	ErrTypeOffTopic           = "off_topic"
	ErrTypeIllegalRefusal     = "illegal_refusal"
	ErrTypeMediumConfidence   = "medium_confidence"
	ErrTypeNotImplemented     = "not_implemented"
)

// RetrievedSection is one legal section returned by the vector search
// backend. (act, section) is not unique across states; duplicates across
// jurisdictions are valid.
type RetrievedSection struct {
	Act          string `json:"act"`
	Section      string `json:"section"`
	Text         string `json:"text"`
	Jurisdiction string `json:"jurisdiction"`
	State        string `json:"state,omitempty"`
	SourceLink   string `json:"source_link,omitempty"`
}

// ScoredSection is a RetrievedSection with a cross-encoder relevance
// score attached. Ordering is by score descending; ties keep the
// original retrieval order.
type ScoredSection struct {
	RetrievedSection
	Score float64 `json:"score"`
}

// Sections strips the scores back off for response assembly.
func Sections(scored []ScoredSection) []RetrievedSection {
	out := make([]RetrievedSection, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.RetrievedSection)
	}
	return out
}

// QueryResponse is the only externally visible artifact of one pipeline
// run.
//
// Invariants: status=refusal implies retrieved_sections is empty;
// status=answer implies confidence > 0. Every terminal outcome carries
// the resolved language code in detected_language.
type QueryResponse struct {
	Status            string             `json:"status"`
	AnswerPrimary     string             `json:"answer_primary"`
	AnswerEnglish     string             `json:"answer_english"`
	Confidence        float64            `json:"confidence"`
	DetectedLanguage  string             `json:"detected_language"`
	RetrievedSections []RetrievedSection `json:"retrieved_sections"`
	ErrorType         string             `json:"error_type,omitempty"`
	HighRisk          bool               `json:"high_risk"`
}

// SectionSearchResult is one row of the law-browser search surface.
type SectionSearchResult struct {
	Act         string `json:"act"`
	Section     string `json:"section"`
	TextPrimary string `json:"text_primary"`
	TextEnglish string `json:"text_english"`
	Jurisdiction string `json:"jurisdiction"`
	SourceLink  string `json:"source_link,omitempty"`
}

type SectionSearchResponse struct {
	DetectedLanguage string                `json:"detected_language"`
	QueryText        string                `json:"query_text"`
	Results          []SectionSearchResult `json:"results"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
