package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
	"market-narrator/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fetchTimeout    = 20 * time.Second
	analysisTimeout = 3 * time.Minute
	chromeHeight    = 12
)

type MarketReader interface {
	GetTicker(ctx context.Context, symbol string) (*service.TickerView, error)
	GetSentiment(ctx context.Context, limit int) ([]domain.SentimentSample, error)
}

type AnalysisRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Services are the collaborators of one TUI session. Runner may be nil.
type Services struct {
	Market   MarketReader
	Runner   AnalysisRunner
	Request  pipeline.Request
	Username string
}

type marketMsg struct {
	ticker    *service.TickerView
	sentiment []domain.SentimentSample
	err       error
}

type analysisMsg struct {
	result *pipeline.Result
	err    error
}

// Model shows the live ticker and sentiment for one pair and runs the
// narration pipeline on demand.
type Model struct {
	svc       Services
	spinner   spinner.Model
	report    viewport.Model
	width     int
	height    int
	loading   bool
	analyzing bool
	ticker    *service.TickerView
	sentiment []domain.SentimentSample
	result    *pipeline.Result
	err       error
}

func NewAppModel(svc Services) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	m := &Model{
		svc:     svc,
		spinner: s,
		report:  viewport.New(80, 10),
		loading: true,
		width:   80,
		height:  24,
	}
	m.report.SetContent(labelStyle.Render("Press a to run an analysis."))
	return m
}

func (m *Model) SetSize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.report.Width = max(m.width-4, 20)
	m.report.Height = max(m.height-chromeHeight, 3)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchMarket())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetchMarket())
		case "a":
			if m.analyzing || m.svc.Runner == nil {
				return m, nil
			}
			m.analyzing = true
			m.report.SetContent(labelStyle.Render("Running analysis..."))
			return m, tea.Batch(m.spinner.Tick, m.runAnalysis())
		}
		var cmd tea.Cmd
		m.report, cmd = m.report.Update(msg)
		return m, cmd

	case marketMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.ticker = msg.ticker
			m.sentiment = msg.sentiment
		}
		return m, nil

	case analysisMsg:
		m.analyzing = false
		if msg.err != nil {
			m.err = msg.err
			m.report.SetContent(errorStyle.Render("Analysis failed: " + msg.err.Error()))
			return m, nil
		}
		m.err = nil
		m.result = msg.result
		m.report.SetContent(renderResult(msg.result))
		m.report.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("market-narrator · %s", m.svc.Request.Pair.Symbol())
	if m.svc.Username != "" {
		title += " · " + m.svc.Username
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.loading && m.ticker == nil:
		b.WriteString(m.spinner.View() + " Fetching market data...")
	case m.ticker != nil:
		b.WriteString(sectionStyle.Render(renderMarket(m.ticker, m.sentiment)))
	}
	if m.err != nil && !m.analyzing {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()))
	}
	b.WriteString("\n\n")

	header := "Analysis"
	if m.analyzing {
		header = m.spinner.View() + " Analysis"
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.report.View())
	b.WriteString("\n")

	help := "r refresh · ↑/↓ scroll · q quit"
	if m.svc.Runner != nil {
		help = "a analyze · " + help
	}
	b.WriteString(footerStyle.Render(help))
	return b.String()
}

func (m *Model) fetchMarket() tea.Cmd {
	market := m.svc.Market
	symbol := m.svc.Request.Pair.Symbol()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		view, err := market.GetTicker(ctx, symbol)
		if err != nil {
			return marketMsg{err: err}
		}
		samples, err := market.GetSentiment(ctx, 1)
		if err != nil {
			return marketMsg{err: err}
		}
		return marketMsg{ticker: view, sentiment: samples}
	}
}

func (m *Model) runAnalysis() tea.Cmd {
	runner := m.svc.Runner
	req := m.svc.Request
	req.Publish = false
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		res, err := runner.Run(ctx, req)
		return analysisMsg{result: res, err: err}
	}
}

func renderMarket(view *service.TickerView, sentiment []domain.SentimentSample) string {
	t := view.Normalized
	change := t.PriceChangePercent + "%"
	if strings.HasPrefix(t.PriceChangePercent, "-") {
		change = downStyle.Render(change)
	} else {
		change = upStyle.Render("+" + change)
	}

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Price    "), "$"+t.LastPrice),
		fmt.Sprintf("%s %s", labelStyle.Render("24h      "), change),
		fmt.Sprintf("%s $%s / $%s", labelStyle.Render("High/Low "), t.HighPrice, t.LowPrice),
		fmt.Sprintf("%s %s %s", labelStyle.Render("Volume   "), t.Volume, view.Pair.Base),
	}
	if len(sentiment) > 0 {
		lines = append(lines, fmt.Sprintf("%s %d (%s)", labelStyle.Render("Fear&Greed"), sentiment[0].Value, sentiment[0].Classification))
	}
	return strings.Join(lines, "\n")
}

func renderResult(res *pipeline.Result) string {
	if res == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Realtime report"))
	b.WriteString("\n" + res.Realtime.Text + "\n\n")
	b.WriteString(headerStyle.Render("Prediction report"))
	b.WriteString("\n" + res.Prediction.Text + "\n\n")
	b.WriteString(headerStyle.Render("Thread"))
	for i, msg := range res.Messages {
		fmt.Fprintf(&b, "\n%d/%d\n%s\n", i+1, len(res.Messages), msg)
	}
	if len(res.Analysis.Missing) > 0 {
		b.WriteString("\n" + labelStyle.Render("Not found in report: "+strings.Join(res.Analysis.Missing, ", ")))
	}
	return b.String()
}
