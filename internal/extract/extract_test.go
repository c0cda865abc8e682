package extract

import (
	"errors"
	"regexp"
	"testing"

	"market-narrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const realtimeReport = `**Bitcoin (BTCUSDT)**
- Preço Atual: $97234.50
- Variação 24h: 3.21%
- Volume: 18234.12 BTC / $1768123456.78 USDT
- Alta: $98000.00
- Baixa: $95012.34`

const predictionReport = `ANÁLISE PREDITIVA BITCOIN
-------------------------
Alvo: $97k-$100k até 31 de dezembro de 2024
Confiança: Média

FATORES POSITIVOS:
1. Preço acima da média de 30 dias
2. Volume comprador crescente
3. Sentimento de ganância persistente

FATORES DE RISCO:
1. Índice em ganância extrema
2. Resistência em $98000.00
3. Volatilidade elevada

INDICADORES TÉCNICOS:
- Fear & Greed: 76 (Extreme Greed)
- Tendência: Alta moderada
- Momentum: Positivo, desacelerando

CONCLUSÃO:
O alvo é plausível mas depende da manutenção do volume.
`

func TestRealtimeDocumentedTemplate(t *testing.T) {
	got := Realtime(realtimeReport)

	assert.Equal(t, domain.Found("97234.50"), got.LastPrice)
	assert.Equal(t, domain.Found("3.21"), got.PriceChangePercent)
	assert.Equal(t, domain.Found("18234.12"), got.Volume)
	assert.Equal(t, domain.Found("1768123456.78"), got.QuoteVolume)
	assert.Equal(t, domain.Found("98000.00"), got.HighPrice)
	assert.Equal(t, domain.Found("95012.34"), got.LowPrice)
	assert.Empty(t, got.Missing)
}

func TestRealtimeNegativeChange(t *testing.T) {
	got := Realtime("- Variação 24h: -1.75%")
	assert.Equal(t, domain.Found("-1.75"), got.PriceChangePercent)
}

func TestRealtimeMissingSectionIsEmptyNotError(t *testing.T) {
	got := Realtime("**Bitcoin (BTCUSDT)**\n- Preço Atual: $97234.50\n")

	assert.True(t, got.LastPrice.Found)
	assert.False(t, got.HighPrice.Found)
	assert.Equal(t, "", got.HighPrice.Value)
	assert.Equal(t, []string{FieldPriceChangePercent, FieldVolume, FieldQuoteVolume, FieldHighPrice, FieldLowPrice}, got.Missing)
}

func TestPredictionDocumentedTemplate(t *testing.T) {
	got := Prediction(predictionReport)

	assert.Equal(t, "$97k-$100k até 31 de dezembro de 2024", got.Target.Value)
	assert.Equal(t, domain.Found("Média"), got.Confidence)
	assert.Equal(t, []string{
		"Preço acima da média de 30 dias",
		"Volume comprador crescente",
		"Sentimento de ganância persistente",
	}, got.SupportingFactors.Items)
	assert.Equal(t, []string{
		"Índice em ganância extrema",
		"Resistência em $98000.00",
		"Volatilidade elevada",
	}, got.KeyRisks.Items)
	assert.Equal(t, domain.Found("76"), got.SentimentValue)
	assert.Equal(t, domain.Found("Extreme Greed"), got.SentimentLabel)
	assert.Equal(t, domain.Found("Alta moderada"), got.Trend)
	assert.Equal(t, domain.Found("Positivo, desacelerando"), got.Momentum)
	assert.Equal(t, "O alvo é plausível mas depende da manutenção do volume.", got.Conclusion.Value)
	assert.Empty(t, got.Missing)
}

func TestPredictionMissingRiskBlock(t *testing.T) {
	text := "Confiança: Alta\n\nFATORES POSITIVOS:\n1. Forte demanda\n2. ETF inflows\n"
	got := Prediction(text)

	assert.Equal(t, []string{"Forte demanda", "ETF inflows"}, got.SupportingFactors.Items)
	assert.False(t, got.KeyRisks.Found)
	assert.Empty(t, got.KeyRisks.Items)
	assert.Contains(t, got.Missing, FieldKeyRisks)
	assert.Contains(t, got.Missing, FieldTrend)
	assert.NotContains(t, got.Missing, FieldConfidence)
}

func TestPredictionBlocksWithoutBlankLines(t *testing.T) {
	text := "FATORES POSITIVOS:\n1. A\n2) B\nFATORES DE RISCO:\n1. C\n- Tendência: Lateral\n"
	got := Prediction(text)

	assert.Equal(t, []string{"A", "B"}, got.SupportingFactors.Items)
	assert.Equal(t, []string{"C"}, got.KeyRisks.Items)
	assert.Equal(t, "Lateral", got.Trend.Value)
}

func TestPredictionEmptyListIsFoundButEmpty(t *testing.T) {
	got := Prediction("FATORES POSITIVOS:\n\nFATORES DE RISCO:\n1. Tudo\n")

	assert.True(t, got.SupportingFactors.Found)
	assert.Empty(t, got.SupportingFactors.Items)
	assert.NotContains(t, got.Missing, FieldSupportingFactors)
	assert.Equal(t, []string{"Tudo"}, got.KeyRisks.Items)
}

func TestPredictionWindowsLineEndings(t *testing.T) {
	text := "Confiança: Baixa\r\nFATORES DE RISCO:\r\n1. Macro\r\n2. Liquidez\r\n"
	got := Prediction(text)

	assert.Equal(t, "Baixa", got.Confidence.Value)
	assert.Equal(t, []string{"Macro", "Liquidez"}, got.KeyRisks.Items)
}

func TestOrdinalItemsFiltersNonOrdinalLines(t *testing.T) {
	block := "Intro line\n1. first\n  2. second  \n- bullet\n10) tenth\n100. too long\n"
	assert.Equal(t, []string{"first", "second", "tenth"}, OrdinalItems(block))
}

func TestExtractFirstMatchWins(t *testing.T) {
	patterns := []Pattern{{Name: "n", Re: regexp.MustCompile(`N: (\d+)`)}}
	rec := Extract("N: 1\nN: 2", patterns, nil)
	assert.Equal(t, domain.Found("1"), rec.Scalar("n"))
}

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

func TestExtractValueAcceptsText(t *testing.T) {
	for _, in := range []any{realtimeReport, []byte(realtimeReport), stringer{realtimeReport}} {
		rec, err := ExtractValue(in, RealtimePatterns, nil)
		require.NoError(t, err)
		assert.Equal(t, "97234.50", rec.Scalar(FieldLastPrice).Value)
	}
}

func TestExtractValueRejectsNonText(t *testing.T) {
	for _, in := range []any{42, map[string]any{"text": "x"}, nil, []string{"a"}} {
		_, err := ExtractValue(in, RealtimePatterns, nil)
		var typeErr *domain.TypeConstraintError
		require.True(t, errors.As(err, &typeErr), "input %#v: expected TypeConstraintError, got %v", in, err)
	}
}

func TestTemplateValuesMatchTextVariants(t *testing.T) {
	figures, err := RealtimeValue(realtimeReport)
	require.NoError(t, err)
	assert.Equal(t, Realtime(realtimeReport), figures)

	_, err = RealtimeValue(42.0)
	var typeErr *domain.TypeConstraintError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "float64", typeErr.Got)

	_, err = PredictionValue([]any{"a"})
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "[]interface {}", typeErr.Got)
}
