package domain

type Provenance string

const (
	ProvenanceLLM      Provenance = "llm"
	ProvenanceFallback Provenance = "fallback"
)

// Importance by provenance. LLM-derived summaries score higher than the
// deterministic fallback; proactive handoffs score highest.
const (
	ImportanceFallbackSummary = 0.5
	ImportanceLLMSummary      = 0.7
	ImportanceHandoff         = 0.85
)

// Summarization gates and bounds.
const (
	LLMSummaryMinUserMessages = 3
	LLMSummaryMinUserChars    = 200
	SummaryMinLength          = 20
	SummaryMaxLength          = 2000

	FallbackMinUserMessages = 2
	FallbackTopicLimit      = 5

	KeyDecisionMinMessages = 10
	KeyDecisionMaxFindings = 8
)

// Summary is a best-effort digest of a session, submitted to the memory
// store. Importance tracks provenance.
type Summary struct {
	Content    string
	Importance float64
	Domain     string
	Tags       []string
	Provenance Provenance
}

// KeyDecision is one structured finding extracted from a long session.
// Importance is on the extractor's 1-10 scale.
type KeyDecision struct {
	Finding    string   `json:"finding"`
	Domain     string   `json:"domain"`
	Importance int      `json:"importance"`
	Tags       []string `json:"tags"`
}

// StoreImportance rescales the 1-10 extractor scale linearly onto the
// store's [0.1, 1.0] range.
func (d KeyDecision) StoreImportance() float64 {
	imp := d.Importance
	if imp < 1 {
		imp = 1
	}
	if imp > 10 {
		imp = 10
	}

	return float64(imp) / 10.0
}
