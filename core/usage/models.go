package usage

import "time"

// Purposes of an AI call.
const (
	PurposeChat      = "chat"
	PurposeTranslate = "translate"
)

// Event is an append-only record of one AI call.
type Event struct {
	ID           int64     `json:"id" db:"id"`
	PartyCode    string    `json:"party_code" db:"party_code"`
	MemberID     string    `json:"member_id" db:"member_id"`
	Day          string    `json:"day" db:"day"`
	Model        string    `json:"model" db:"model"`
	Purpose      string    `json:"purpose" db:"purpose"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens int       `json:"output_tokens" db:"output_tokens"`
	Messages     int       `json:"messages" db:"messages"`
	CostUSD      float64   `json:"cost_usd" db:"cost_usd"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Record describes a completed AI call to be logged.
type Record struct {
	MemberID     string
	PartyCode    string
	Day          string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
}

// Pricing holds the per-million token rates of a deployment.
type Pricing struct {
	Model            string  `json:"model"`
	InputPerMillion  float64 `json:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million"`
}

// Cost returns the USD cost of a call.
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*p.InputPerMillion + float64(outputTokens)/1e6*p.OutputPerMillion
}

type (
	Totals struct {
		InputTokens  int     `json:"input_tokens"`
		OutputTokens int     `json:"output_tokens"`
		Messages     int     `json:"messages"`
		CostUSD      float64 `json:"cost_usd"`
	}

	MemberUsage struct {
		Name string `json:"name"`
		Totals
	}

	// Report aggregates usage over a trailing window.
	Report struct {
		Since   string        `json:"since"`
		Pricing Pricing       `json:"pricing"`
		Totals  Totals        `json:"totals"`
		Users   []MemberUsage `json:"users"`
	}
)

func (t *Totals) add(e Event) {
	t.InputTokens += e.InputTokens
	t.OutputTokens += e.OutputTokens
	t.Messages += e.Messages
	t.CostUSD += e.CostUSD
}
