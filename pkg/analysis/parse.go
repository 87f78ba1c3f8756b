package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/voicelane/voicelane/pkg/domain"
)

// Models frequently wrap their JSON in a fenced code block even when told
// not to. Both the ```json and the bare ``` variants are tolerated.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON strips a markdown code fence from the model output if one is
// present, returning the inner text. Unfenced input is returned trimmed.
func ExtractJSON(content string) string {
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(content)
}

// rawResult mirrors Result with lenient numeric types so that a model
// responding with "leadScore": 87.5 still parses.
type rawResult struct {
	LeadScore           *float64 `json:"leadScore"`
	QualificationStatus string   `json:"qualificationStatus"`
	Sentiment           string   `json:"sentiment"`
	DetailedSummary     string   `json:"detailedSummary"`
	KeyInsights         []string `json:"keyInsights"`
	FollowUpActions     []string `json:"followUpActions"`
	PersuasionStrategy  string   `json:"persuasionStrategy"`
	PsychologyProfile   string   `json:"psychologyProfile"`
	CommunicationStyle  string   `json:"communicationStyle"`
	Objections          []string `json:"objections"`
	ObjectionHandling   []string `json:"objectionHandling"`
	PersuasionTactics   []string `json:"persuasionTactics"`
	InterestLevel       float64  `json:"interestLevel"`
	DecisionAuthority   string   `json:"decisionAuthority"`
	Timeline            string   `json:"timeline"`
	NextBestAction      string   `json:"nextBestAction"`
}

// ParseResult parses the model's message content into a Result. The content
// may be raw JSON or JSON inside a markdown fence. The parsed object must
// carry a numeric leadScore and a non-empty qualificationStatus; anything
// less is a parsing error.
func ParseResult(content string) (*Result, error) {
	text := ExtractJSON(content)
	if text == "" {
		return nil, domain.NewParsingError("empty analysis response", nil)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, domain.NewParsingError("analysis response is not valid JSON", err)
	}

	if raw.LeadScore == nil {
		return nil, domain.NewParsingError("analysis response missing numeric leadScore", nil)
	}
	if strings.TrimSpace(raw.QualificationStatus) == "" {
		return nil, domain.NewParsingError("analysis response missing qualificationStatus", nil)
	}

	return &Result{
		LeadScore:           clampScore(int(math.Round(*raw.LeadScore))),
		QualificationStatus: normalizeQualification(raw.QualificationStatus),
		Sentiment:           normalizeSentiment(raw.Sentiment),
		DetailedSummary:     raw.DetailedSummary,
		KeyInsights:         raw.KeyInsights,
		FollowUpActions:     raw.FollowUpActions,
		PersuasionStrategy:  raw.PersuasionStrategy,
		PsychologyProfile:   raw.PsychologyProfile,
		CommunicationStyle:  raw.CommunicationStyle,
		Objections:          raw.Objections,
		ObjectionHandling:   raw.ObjectionHandling,
		PersuasionTactics:   raw.PersuasionTactics,
		InterestLevel:       clampInterest(int(math.Round(raw.InterestLevel))),
		DecisionAuthority:   normalizeAuthority(raw.DecisionAuthority),
		Timeline:            raw.Timeline,
		NextBestAction:      raw.NextBestAction,
	}, nil
}
