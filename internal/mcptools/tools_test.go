package mcptools

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTicker(t *testing.T) {
	tools := NewTools(&marketStub{})

	_, out, err := tools.GetTicker(context.Background(), nil, TickerInput{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", out.Pair)
	assert.Equal(t, "Bitcoin", out.Name)
	assert.Equal(t, "97000.1", out.Raw.LastPrice)
	assert.Equal(t, "97000.10", out.Normalized.LastPrice)
	assert.Equal(t, "2024-12-01T12:00:00Z", out.FetchedAt)
}

func TestGetTickerError(t *testing.T) {
	tools := NewTools(&marketStub{err: errors.New("unsupported trading pair")})
	_, _, err := tools.GetTicker(context.Background(), nil, TickerInput{Symbol: "X"})
	assert.Error(t, err)
}

func TestGetFearGreedDefaultsLimit(t *testing.T) {
	market := &marketStub{}
	tools := NewTools(market)

	_, out, err := tools.GetFearGreed(context.Background(), nil, FearGreedInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, market.lastLimit)
	require.Len(t, out.Samples, 1)
	assert.Equal(t, Sentiment{Value: 76, Classification: "Extreme Greed", Date: "2024-12-01"}, out.Samples[0])
}

func TestGetHistoryDefaultsDays(t *testing.T) {
	market := &marketStub{}
	tools := NewTools(market)

	_, out, err := tools.GetHistory(context.Background(), nil, HistoryInput{Symbol: "BTCUSDT"})
	require.NoError(t, err)
	assert.Equal(t, 30, market.lastDays)
	require.Len(t, out.Bars, 1)
	assert.Equal(t, Bar{Date: "2024-12-01", Close: 97000, VolumeFrom: 10, VolumeTo: 970000}, out.Bars[0])
}

func TestExtract(t *testing.T) {
	tools := NewTools(&marketStub{})

	_, out, err := tools.Extract(context.Background(), nil, ExtractInput{Kind: "realtime", Text: "- Preço Atual: $97000.10"})
	require.NoError(t, err)
	require.NotNil(t, out.Figures)
	assert.Equal(t, domain.Found("97000.10"), out.Figures.LastPrice)
	assert.Nil(t, out.Analysis)

	_, out, err = tools.Extract(context.Background(), nil, ExtractInput{Kind: "prediction", Text: "Confiança: Baixa\n"})
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, domain.Found("Baixa"), out.Analysis.Confidence)

	_, _, err = tools.Extract(context.Background(), nil, ExtractInput{Kind: "tweet"})
	assert.Error(t, err)
}

func TestExtractRejectsNonText(t *testing.T) {
	tools := NewTools(&marketStub{})

	for _, in := range []ExtractInput{{Kind: "realtime", Text: 42.0}, {Kind: "prediction", Text: nil}} {
		_, _, err := tools.Extract(context.Background(), nil, in)
		var typeErr *domain.TypeConstraintError
		require.True(t, errors.As(err, &typeErr), "input %#v: got %v", in, err)
	}
}

func TestServerListsTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(&marketStub{}, "test")

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"extract_analysis", "get_fear_greed_index", "get_historical_prices", "get_ticker"}, names)
}

type marketStub struct {
	err       error
	lastLimit int
	lastDays  int
}

var fetchedAt = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func (m *marketStub) GetTicker(_ context.Context, symbol string) (*service.TickerView, error) {
	if m.err != nil {
		return nil, m.err
	}
	pair, err := domain.ParsePair(symbol)
	if err != nil {
		return nil, err
	}
	return &service.TickerView{
		Pair:       pair,
		Raw:        domain.TickerSnapshot{Symbol: pair.Symbol(), LastPrice: "97000.1", FetchedAt: fetchedAt},
		Normalized: domain.TickerSnapshot{Symbol: pair.Symbol(), LastPrice: "97000.10", FetchedAt: fetchedAt},
	}, nil
}

func (m *marketStub) GetSentiment(_ context.Context, limit int) ([]domain.SentimentSample, error) {
	m.lastLimit = limit
	return []domain.SentimentSample{{Value: 76, Classification: "Extreme Greed", Timestamp: fetchedAt}}, nil
}

func (m *marketStub) GetHistory(_ context.Context, _ string, days int) ([]domain.HistoricalBar, error) {
	m.lastDays = days
	return []domain.HistoricalBar{{Close: 97000, VolumeFrom: 10, VolumeTo: 970000, Time: fetchedAt}}, nil
}
