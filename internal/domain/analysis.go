package domain

import "time"

const (
	ReportRealtime   = "realtime"
	ReportPrediction = "prediction"
)

// NarrativeReport is free text produced by the language model.
type NarrativeReport struct {
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field is an extracted scalar. Found distinguishes a pattern miss from a
// legitimately empty capture.
type Field struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}

func Found(v string) Field {
	return Field{Value: v, Found: true}
}

// Or returns the value, or fallback when the field was not found.
func (f Field) Or(fallback string) string {
	if !f.Found {
		return fallback
	}
	return f.Value
}

// ListField is an extracted ordinal list.
type ListField struct {
	Items []string `json:"items"`
	Found bool     `json:"found"`
}

// Head returns at most n items.
func (l ListField) Head(n int) []string {
	if len(l.Items) <= n {
		return l.Items
	}
	return l.Items[:n]
}

// RealtimeFigures are the ticker numbers recovered from a realtime report.
type RealtimeFigures struct {
	LastPrice          Field    `json:"lastPrice"`
	PriceChangePercent Field    `json:"priceChangePercent"`
	Volume             Field    `json:"volume"`
	QuoteVolume        Field    `json:"quoteVolume"`
	HighPrice          Field    `json:"highPrice"`
	LowPrice           Field    `json:"lowPrice"`
	Missing            []string `json:"missing,omitempty"`
}

// ExtractedAnalysis is the structured view of a prediction report.
type ExtractedAnalysis struct {
	TargetRange       Field     `json:"targetRange"`
	TargetDate        Field     `json:"targetDate"`
	Target            Field     `json:"target"`
	CurrentPrice      Field     `json:"currentPrice"`
	Confidence        Field     `json:"confidence"`
	SupportingFactors ListField `json:"supportingFactors"`
	KeyRisks          ListField `json:"keyRisks"`
	SentimentValue    Field     `json:"sentimentValue"`
	SentimentLabel    Field     `json:"sentimentLabel"`
	Trend             Field     `json:"trend"`
	Momentum          Field     `json:"momentum"`
	Conclusion        Field     `json:"conclusion"`
	Missing           []string  `json:"missing,omitempty"`
}
