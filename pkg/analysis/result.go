package analysis

import "strings"

// QualificationStatus is the ordered qualification tier of a lead
type QualificationStatus string

// Qualification tiers
const (
	QualificationHot         QualificationStatus = "Hot"
	QualificationWarm        QualificationStatus = "Warm"
	QualificationCold        QualificationStatus = "Cold"
	QualificationUnqualified QualificationStatus = "Unqualified"
)

// Sentiment is the overall sentiment of the call
type Sentiment string

// Sentiment values
const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// DecisionAuthority is the prospect's authority to make a buying decision
type DecisionAuthority string

// Decision authority values
const (
	AuthorityHigh    DecisionAuthority = "High"
	AuthorityMedium  DecisionAuthority = "Medium"
	AuthorityLow     DecisionAuthority = "Low"
	AuthorityUnknown DecisionAuthority = "Unknown"
)

// Analyzer identifiers stored on the call record
const (
	AnalyzerOpenAI   = "openai"
	AnalyzerFallback = "fallback"
)

// PrimaryFailure captures why the OpenAI path failed when the fallback
// produced the result. It is surfaced to the caller so the UI can show that
// the analysis was degraded.
type PrimaryFailure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the structured lead-qualification analysis attached 1:1 to a
// call record. It is immutable once written except by a full re-run.
type Result struct {
	LeadScore           int                 `json:"leadScore"`
	QualificationStatus QualificationStatus `json:"qualificationStatus"`
	Sentiment           Sentiment           `json:"sentiment"`
	DetailedSummary     string              `json:"detailedSummary"`
	KeyInsights         []string            `json:"keyInsights"`
	FollowUpActions     []string            `json:"followUpActions"`
	PersuasionStrategy  string              `json:"persuasionStrategy"`
	PsychologyProfile   string              `json:"psychologyProfile"`
	CommunicationStyle  string              `json:"communicationStyle"`
	Objections          []string            `json:"objections"`
	ObjectionHandling   []string            `json:"objectionHandling"`
	PersuasionTactics   []string            `json:"persuasionTactics"`
	InterestLevel       int                 `json:"interestLevel"`
	DecisionAuthority   DecisionAuthority   `json:"decisionAuthority"`
	Timeline            string              `json:"timeline"`
	NextBestAction      string              `json:"nextBestAction"`

	// Metadata
	AnalyzerUsed string          `json:"analyzerUsed"`
	OpenAIError  *PrimaryFailure `json:"openAIError,omitempty"`
}

// normalizeQualification maps a model-provided tier onto the canonical
// spelling, case-insensitively. Unknown values are returned unchanged.
func normalizeQualification(v string) QualificationStatus {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "hot":
		return QualificationHot
	case "warm":
		return QualificationWarm
	case "cold":
		return QualificationCold
	case "unqualified":
		return QualificationUnqualified
	}
	return QualificationStatus(strings.TrimSpace(v))
}

func normalizeSentiment(v string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	case "neutral", "":
		return SentimentNeutral
	}
	return Sentiment(strings.TrimSpace(v))
}

func normalizeAuthority(v string) DecisionAuthority {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high":
		return AuthorityHigh
	case "medium":
		return AuthorityMedium
	case "low":
		return AuthorityLow
	case "unknown", "":
		return AuthorityUnknown
	}
	return DecisionAuthority(strings.TrimSpace(v))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampInterest(level int) int {
	if level < 0 {
		return 0
	}
	if level > 10 {
		return 10
	}
	return level
}
