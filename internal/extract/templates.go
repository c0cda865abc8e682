package extract

import (
	"regexp"

	"market-narrator/internal/domain"
)

// Field names used by the realtime and prediction pattern sets.
const (
	FieldLastPrice          = "lastPrice"
	FieldPriceChangePercent = "priceChangePercent"
	FieldVolume             = "volume"
	FieldQuoteVolume        = "quoteVolume"
	FieldHighPrice          = "highPrice"
	FieldLowPrice           = "lowPrice"

	FieldTarget            = "target"
	FieldConfidence        = "confidence"
	FieldSentimentValue    = "sentimentValue"
	FieldSentimentLabel    = "sentimentLabel"
	FieldTrend             = "trend"
	FieldMomentum          = "momentum"
	FieldConclusion        = "conclusion"
	FieldSupportingFactors = "supportingFactors"
	FieldKeyRisks          = "keyRisks"
)

// Each pattern is anchored on a label that appears once in its template.
var RealtimePatterns = []Pattern{
	{FieldLastPrice, regexp.MustCompile(`Preço Atual:\s*\$\s*(-?[0-9.]+)`)},
	{FieldPriceChangePercent, regexp.MustCompile(`Variação 24h:\s*([+-]?[0-9.]+)\s*%`)},
	{FieldVolume, regexp.MustCompile(`Volume:\s*([0-9.]+)\s+[A-Z0-9]+`)},
	{FieldQuoteVolume, regexp.MustCompile(`/\s*\$\s*([0-9.]+)\s+[A-Z]+`)},
	{FieldHighPrice, regexp.MustCompile(`Alta:\s*\$\s*([0-9.]+)`)},
	{FieldLowPrice, regexp.MustCompile(`Baixa:\s*\$\s*([0-9.]+)`)},
}

var PredictionPatterns = []Pattern{
	{FieldTarget, regexp.MustCompile(`Alvo:[ \t]*([^\n]+)`)},
	{FieldConfidence, regexp.MustCompile(`Confiança:[ \t]*([^\n]+)`)},
	{FieldSentimentValue, regexp.MustCompile(`Fear & Greed:[ \t]*([^\n(]*?)[ \t]*\(`)},
	{FieldSentimentLabel, regexp.MustCompile(`Fear & Greed:[^\n(]*\(([^)\n]*)\)`)},
	{FieldTrend, regexp.MustCompile(`Tendência:[ \t]*([^\n]+)`)},
	{FieldMomentum, regexp.MustCompile(`Momentum:[ \t]*([^\n]+)`)},
	{FieldConclusion, regexp.MustCompile(`(?s)CONCLUSÃO:[ \t]*\n?(.+?)(?:\n[ \t]*\n|\z)`)},
}

// List blocks run from the header to the first blank line or the next
// upper-case section header, whichever comes first.
var PredictionLists = []ListPattern{
	{FieldSupportingFactors, listBlock("FATORES POSITIVOS")},
	{FieldKeyRisks, listBlock("FATORES DE RISCO")},
}

func listBlock(header string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(header) + `:[ \t]*\n(.*?)(?:\n[ \t]*\n|\n[ \t]*[A-ZÀ-Ý][A-ZÀ-Ý &]+:|\z)`)
}

// Realtime extracts the ticker figures from a realtime report.
func Realtime(text string) domain.RealtimeFigures {
	return realtimeFigures(Extract(text, RealtimePatterns, nil))
}

// RealtimeValue is Realtime for decoded input of unknown type. Anything but
// text fails with a TypeConstraintError.
func RealtimeValue(v any) (domain.RealtimeFigures, error) {
	rec, err := ExtractValue(v, RealtimePatterns, nil)
	if err != nil {
		return domain.RealtimeFigures{}, err
	}
	return realtimeFigures(rec), nil
}

func realtimeFigures(rec Record) domain.RealtimeFigures {
	return domain.RealtimeFigures{
		LastPrice:          rec.Scalar(FieldLastPrice),
		PriceChangePercent: rec.Scalar(FieldPriceChangePercent),
		Volume:             rec.Scalar(FieldVolume),
		QuoteVolume:        rec.Scalar(FieldQuoteVolume),
		HighPrice:          rec.Scalar(FieldHighPrice),
		LowPrice:           rec.Scalar(FieldLowPrice),
		Missing:            rec.Missing,
	}
}

// Prediction extracts the analysis fields from a prediction report. Target
// range, target date and current price are not part of the report; the
// caller fills them from its own inputs.
func Prediction(text string) domain.ExtractedAnalysis {
	return predictionFields(Extract(text, PredictionPatterns, PredictionLists))
}

// PredictionValue is Prediction for decoded input of unknown type.
func PredictionValue(v any) (domain.ExtractedAnalysis, error) {
	rec, err := ExtractValue(v, PredictionPatterns, PredictionLists)
	if err != nil {
		return domain.ExtractedAnalysis{}, err
	}
	return predictionFields(rec), nil
}

func predictionFields(rec Record) domain.ExtractedAnalysis {
	return domain.ExtractedAnalysis{
		Target:            rec.Scalar(FieldTarget),
		Confidence:        rec.Scalar(FieldConfidence),
		SupportingFactors: rec.List(FieldSupportingFactors),
		KeyRisks:          rec.List(FieldKeyRisks),
		SentimentValue:    rec.Scalar(FieldSentimentValue),
		SentimentLabel:    rec.Scalar(FieldSentimentLabel),
		Trend:             rec.Scalar(FieldTrend),
		Momentum:          rec.Scalar(FieldMomentum),
		Conclusion:        rec.Scalar(FieldConclusion),
		Missing:           rec.Missing,
	}
}
