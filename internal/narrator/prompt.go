package narrator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"market-narrator/internal/domain"
	"market-narrator/internal/ta"
)

const numberRules = `REGRAS IMPORTANTES:
- Use os números EXATAMENTE como fornecidos
- NÃO adicione ou remova casas decimais
- NÃO adicione vírgulas
- NÃO faça nenhuma modificação nos números

Os valores já virão formatados com 2 casas decimais.`

// RealtimeSystemPrompt is the instruction for the realtime report. Its labels
// are the anchors used by extract.RealtimePatterns.
func RealtimeSystemPrompt(pair domain.Pair) string {
	name := pair.Name()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Você é um agente especializado em reportar dados do %s.\n\n", name)
	sb.WriteString("FORMATE OS DADOS EXATAMENTE ASSIM:\n\n")
	fmt.Fprintf(&sb, "**%s (%s)**\n", name, pair.Symbol())
	sb.WriteString("- Preço Atual: $[lastPrice]\n")
	sb.WriteString("- Variação 24h: [priceChangePercent]%\n")
	fmt.Fprintf(&sb, "- Volume: [volume] %s / $[quoteVolume] %s\n", pair.Base, pair.Quote)
	sb.WriteString("- Alta: $[highPrice]\n")
	sb.WriteString("- Baixa: $[lowPrice]\n\n")
	sb.WriteString(numberRules)
	return sb.String()
}

// RealtimeUserPrompt carries the normalized ticker as JSON.
func RealtimeUserPrompt(pair domain.Pair, ticker domain.TickerSnapshot) (string, error) {
	data := make(map[string]string, 6)
	for _, f := range ticker.Fields() {
		data[f.Name] = f.Value
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode ticker prompt: %w", err)
	}
	return fmt.Sprintf(
		"Apresente os dados atuais do %s (%s). Mantenha todos os números exatamente como abaixo.\n\n%s",
		pair.Name(), pair.Symbol(), payload,
	), nil
}

// PredictionSystemPrompt is the instruction for the prediction report. Its
// headers are the anchors used by extract.PredictionPatterns.
func PredictionSystemPrompt(pair domain.Pair) string {
	name := pair.Name()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Você é um analista de previsão do %s.\n", name)
	fmt.Fprintf(&sb, "Use os dados disponíveis para avaliar se o %s atingirá determinados preços.\n\n", name)
	sb.WriteString("ANÁLISE OBRIGATÓRIA:\n")
	sb.WriteString("1. Dados históricos (fornecidos)\n")
	sb.WriteString("2. Índice Fear & Greed (fornecido)\n")
	sb.WriteString("3. Dados atuais (já fornecidos)\n\n")
	sb.WriteString("FORMATO DA RESPOSTA:\n\n")
	fmt.Fprintf(&sb, "ANÁLISE PREDITIVA %s\n", strings.ToUpper(name))
	sb.WriteString("-------------------------\n")
	sb.WriteString("Alvo: [Faixa de preço e data]\n")
	sb.WriteString("Confiança: [Baixa/Média/Alta]\n\n")
	sb.WriteString("FATORES POSITIVOS:\n")
	sb.WriteString("1. [fator concreto baseado em dados]\n")
	sb.WriteString("2. [fator concreto baseado em dados]\n")
	sb.WriteString("3. [fator concreto baseado em dados]\n\n")
	sb.WriteString("FATORES DE RISCO:\n")
	sb.WriteString("1. [risco baseado em dados]\n")
	sb.WriteString("2. [risco baseado em dados]\n")
	sb.WriteString("3. [risco baseado em dados]\n\n")
	sb.WriteString("INDICADORES TÉCNICOS:\n")
	sb.WriteString("- Fear & Greed: [valor atual] ([classificação])\n")
	sb.WriteString("- Tendência: [tendência baseada nos dados históricos]\n")
	sb.WriteString("- Momentum: [análise do momentum atual]\n\n")
	sb.WriteString("CONCLUSÃO:\n")
	sb.WriteString("[Análise objetiva baseada apenas nos dados apresentados]")
	return sb.String()
}

// PredictionUserPrompt asks the target question and embeds the sentiment
// and history data.
func PredictionUserPrompt(in PredictionInput) (string, error) {
	sentiment, err := json.MarshalIndent(in.Sentiment, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sentiment prompt: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Considerando os dados atuais acima, analise se o %s atingirá %s em %s.\n",
		in.Pair.Name(), in.TargetPrice, in.TargetDate)
	sb.WriteString("Use os dados históricos e o índice Fear & Greed para fundamentar sua análise.\n\n")
	sb.WriteString("ÍNDICE FEAR & GREED (mais recente primeiro):\n")
	sb.Write(sentiment)
	sb.WriteString("\n\n")
	sb.WriteString(FormatHistory(in.History))
	if indicators := FormatIndicators(in.History); indicators != "" {
		sb.WriteString("\n\n")
		sb.WriteString(indicators)
	}
	return sb.String(), nil
}

// FormatHistory renders daily bars as a compact table with a summary line.
func FormatHistory(bars []domain.HistoricalBar) string {
	if len(bars) == 0 {
		return "DADOS HISTÓRICOS: indisponíveis"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "DADOS HISTÓRICOS (%d dias):\n", len(bars))
	sb.WriteString("data | fechamento | volume compra | volume venda\n")
	low, high := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		fmt.Fprintf(&sb, "%s | %.2f | %.2f | %.2f\n", b.Time.Format("2006-01-02"), b.Close, b.VolumeFrom, b.VolumeTo)
		low = math.Min(low, b.Close)
		high = math.Max(high, b.Close)
	}
	first, last := bars[0].Close, bars[len(bars)-1].Close
	change := 0.0
	if first != 0 {
		change = (last - first) / first * 100
	}
	fmt.Fprintf(&sb, "Resumo: mínima %.2f, máxima %.2f, variação no período %+.2f%%", low, high, change)
	return sb.String()
}

// FormatIndicators summarizes the closes as EMA, RSI, MACD and Bollinger
// readings. Indicators without enough bars are left out; empty when none
// can be computed.
func FormatIndicators(bars []domain.HistoricalBar) string {
	if len(bars) < 2 {
		return ""
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var lines []string
	ema7, _ := ta.Last(ta.EMASeries(closes, 7))
	ema25, _ := ta.Last(ta.EMASeries(closes, 25))
	lines = append(lines, fmt.Sprintf("- EMA7: %.2f | EMA25: %.2f", ema7, ema25))

	if rsi, ok := ta.Last(ta.RSISeries(closes, 14)); ok {
		lines = append(lines, fmt.Sprintf("- RSI(14): %.2f", rsi))
	}

	macd, signal := ta.MACDSeries(closes, 12, 26, 9)
	if m, ok := ta.Last(macd); ok {
		s, _ := ta.Last(signal)
		lines = append(lines, fmt.Sprintf("- MACD(12,26,9): %.2f | sinal %.2f", m, s))
	}

	if len(closes) >= 20 {
		mid, upper, lower := ta.BollingerSeries(closes, 20, 2)
		m, _ := ta.Last(mid)
		u, _ := ta.Last(upper)
		l, _ := ta.Last(lower)
		lines = append(lines, fmt.Sprintf("- Bollinger(20,2): %.2f / %.2f / %.2f", l, m, u))
	}

	return "INDICADORES CALCULADOS:\n" + strings.Join(lines, "\n")
}
