package testdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/voicelane/voicelane/pkg/models"
)

// CallGeneratorConfig configures call record generation
type CallGeneratorConfig struct {
	UserID           string
	Count            int
	Provider         string  // "vapi" or "retell"; empty picks randomly
	TranscriptChance float64 // 0.0-1.0 probability of a transcript
	PositiveBias     float64 // 0.0-1.0 share of positive transcripts
	Seed             int64
}

// Transcript sentence pools. Positive lines carry buying-signal vocabulary,
// negative lines carry rejection vocabulary, so generated transcripts steer
// the keyword analyzer in a known direction.
var positiveLines = []string{
	"Yes that sounds great and I am definitely interested",
	"Yes we want this and we need it soon",
	"That sounds good and I definitely agree",
	"Great I like it and I want the full package",
	"Yes definitely send the contract over",
}

var negativeLines = []string{
	"No we are not going ahead with this",
	"That is too expensive and we are busy",
	"Maybe later but probably not this quarter",
	"No I am unsure and I will have to think about it",
	"Probably not and please do not call again",
}

var neutralLines = []string{
	"Can you tell me more about how it works?",
	"Who else in our industry uses this?",
	"How does the onboarding process look?",
	"What integrations do you support?",
	"I would have to check with my manager first",
}

var agentLines = []string{
	"Thanks for taking my call, I wanted to walk you through what we do for teams in your space.",
	"Let me give you a quick overview of the platform and how the rollout usually goes.",
	"Based on what you described earlier, here is how our customers typically handle that.",
	"I can send over a short summary after this call with pricing for your team size.",
	"Does a thirty minute walkthrough with one of our engineers sound reasonable?",
}

// Generator produces realistic fake call records for tests and local seeding
type Generator struct {
	config CallGeneratorConfig
	rng    *rand.Rand
	faker  *gofakeit.Faker
}

// NewGenerator creates a call generator with the given config
func NewGenerator(config CallGeneratorConfig) *Generator {
	if config.Count == 0 {
		config.Count = 10
	}
	if config.TranscriptChance == 0 {
		config.TranscriptChance = 0.7
	}
	if config.PositiveBias == 0 {
		config.PositiveBias = 0.5
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		faker:  gofakeit.New(seed),
	}
}

// Generate produces the configured number of call records
func (g *Generator) Generate() []*models.CallRecord {
	records := make([]*models.CallRecord, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		records = append(records, g.generateOne(i))
	}
	return records
}

// GenerateTranscript produces a multi-turn sales call transcript. positive
// steers the vocabulary toward buying signals or rejections.
func (g *Generator) GenerateTranscript(positive bool) string {
	pool := negativeLines
	if positive {
		pool = positiveLines
	}

	turns := 4 + g.rng.Intn(5)
	var sb strings.Builder
	for i := 0; i < turns; i++ {
		sb.WriteString("Agent: ")
		sb.WriteString(agentLines[g.rng.Intn(len(agentLines))])
		sb.WriteString("\n")

		sb.WriteString("Prospect: ")
		if g.rng.Float64() < 0.3 {
			sb.WriteString(neutralLines[g.rng.Intn(len(neutralLines))])
		} else {
			sb.WriteString(pool[g.rng.Intn(len(pool))])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (g *Generator) generateOne(i int) *models.CallRecord {
	provider := g.config.Provider
	if provider == "" {
		if g.rng.Intn(2) == 0 {
			provider = "vapi"
		} else {
			provider = "retell"
		}
	}

	started := time.Now().Add(-time.Duration(g.rng.Intn(720)) * time.Hour)
	duration := 30 + g.rng.Intn(900)
	ended := started.Add(time.Duration(duration) * time.Second)

	record := &models.CallRecord{
		UserID:         g.config.UserID,
		Provider:       provider,
		ProviderCallID: fmt.Sprintf("%s-%s", provider, g.faker.UUID()),
		PhoneNumber:    fmt.Sprintf("+1%d", 2000000000+g.rng.Int63n(8000000000)),
		Direction:      models.DirectionOutbound,
		Status:         models.CallStatusCompleted,
		Duration:       duration,
		StartedAt:      &started,
		EndedAt:        &ended,
	}

	if g.rng.Float64() < g.config.TranscriptChance {
		transcript := g.GenerateTranscript(g.rng.Float64() < g.config.PositiveBias)
		record.Transcript = &transcript
	} else if i%4 == 0 {
		record.Status = models.CallStatusNoAnswer
		record.Duration = 0
		record.EndedAt = nil
	}

	return record
}
