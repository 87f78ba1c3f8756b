package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Indicator word lists for the keyword heuristic. Matching is exact against
// lowercased whitespace tokens.
var (
	positiveWords = []string{
		"interested", "yes", "good", "great", "awesome",
		"definitely", "agree", "like", "want", "need",
	}
	negativeWords = []string{
		"no", "not", "don't", "expensive", "busy",
		"later", "maybe", "unsure", "think", "probably",
	}
)

// Fallback tier thresholds. Note these differ from the dashboard's
// color-coding bands in pkg/leads; the two sets are intentionally kept as
// separate constants (see DESIGN.md).
const (
	fallbackHotThreshold  = 80
	fallbackWarmThreshold = 60
	fallbackColdThreshold = 40
)

// AnalyzeFallback scores a transcript with the deterministic keyword
// heuristic. This is the degrade-gracefully path used when the OpenAI
// analysis fails; the textual fields are generic templates, not real NLP.
func AnalyzeFallback(transcript string) *Result {
	positiveCount, negativeCount := countIndicators(transcript)

	score := 50
	if positiveCount+negativeCount > 0 {
		score = int(math.Round(100 * float64(positiveCount) / float64(positiveCount+negativeCount)))
	}
	score = clampScore(score)

	qualification := scoreToQualification(score)
	sentiment := SentimentNeutral
	if positiveCount > 2*negativeCount {
		sentiment = SentimentPositive
	} else if negativeCount > 2*positiveCount {
		sentiment = SentimentNegative
	}
	interestLevel := clampInterest(int(math.Round(float64(score) / 10)))

	summary := fmt.Sprintf(
		"Keyword-based analysis: %d positive and %d negative indicators were found in the transcript, producing a lead score of %d (%s).",
		positiveCount, negativeCount, score, qualification)

	return &Result{
		LeadScore:           score,
		QualificationStatus: qualification,
		Sentiment:           sentiment,
		DetailedSummary:     summary,
		KeyInsights: []string{
			fmt.Sprintf("Transcript contains %d positive buying signals", positiveCount),
			fmt.Sprintf("Transcript contains %d negative or hesitant signals", negativeCount),
			fmt.Sprintf("Lead qualifies as %s based on indicator balance", qualification),
		},
		FollowUpActions: []string{
			"Review the full transcript manually",
			"Re-run the AI analysis once an OpenAI key is configured and reachable",
		},
		PersuasionStrategy: fmt.Sprintf(
			"Address hesitation signals directly; the conversation leaned %s.", strings.ToLower(string(sentiment))),
		PsychologyProfile:  "Not available from keyword analysis; run the AI analyzer for a full profile.",
		CommunicationStyle: "Not available from keyword analysis.",
		Objections:         []string{},
		ObjectionHandling:  []string{},
		PersuasionTactics: []string{
			"Follow up while the conversation is recent",
		},
		InterestLevel:     interestLevel,
		DecisionAuthority: AuthorityUnknown,
		Timeline:          "Unknown",
		NextBestAction:    nextActionForTier(qualification),
	}
}

func countIndicators(transcript string) (positive, negative int) {
	tokens := strings.Fields(strings.ToLower(transcript))
	for _, token := range tokens {
		for _, w := range positiveWords {
			if token == w {
				positive++
				break
			}
		}
		for _, w := range negativeWords {
			if token == w {
				negative++
				break
			}
		}
	}
	return positive, negative
}

func scoreToQualification(score int) QualificationStatus {
	switch {
	case score >= fallbackHotThreshold:
		return QualificationHot
	case score >= fallbackWarmThreshold:
		return QualificationWarm
	case score >= fallbackColdThreshold:
		return QualificationCold
	default:
		return QualificationUnqualified
	}
}

func nextActionForTier(q QualificationStatus) string {
	switch q {
	case QualificationHot:
		return "Call back within 24 hours to close"
	case QualificationWarm:
		return "Schedule a follow-up call this week"
	case QualificationCold:
		return "Add to nurture sequence and revisit next month"
	default:
		return "Deprioritize; focus on higher-scoring leads"
	}
}
