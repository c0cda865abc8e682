package publish

import (
	"fmt"
	"strings"

	"market-narrator/internal/domain"
)

const (
	listItemsPerMessage = 2
	bulletPrefix        = "• "
	minBulletLength     = 24
	notAvailable        = "n/d"
)

// Compose renders an analysis as the four-message thread: market data,
// technical data, supporting factors and risks.
func Compose(pair domain.Pair, a domain.ExtractedAnalysis) []string {
	name := pair.Name()
	tag := hashtag(name)
	short := hashtag(pair.Base)

	market := fmt.Sprintf(
		"%s Market Data 📊\nCurrent Price: %s\nTarget Analysis: %s by %s\nConfidence Level: %s\n%s #Crypto",
		tag, price(a.CurrentPrice), a.TargetRange.Or(notAvailable), a.TargetDate.Or(notAvailable),
		a.Confidence.Or(notAvailable), short,
	)
	technical := fmt.Sprintf(
		"%s Technical Data 📈\nFear & Greed: %s\nMarket Trend: %s\n%s #Trading",
		short, sentiment(a), a.Trend.Or(notAvailable), tag,
	)
	factors := fmt.Sprintf("Supporting Data for %s:\n%s\n%s #CryptoAnalysis",
		tag, bullets(a.SupportingFactors), short)
	risks := fmt.Sprintf("%s Risk Factors:\n%s\n%s #CryptoMarkets",
		short, bullets(a.KeyRisks), tag)

	return []string{market, technical, factors, risks}
}

// Fit caps every message at max runes. Bullet lines of an over-long
// message are shortened first so its header and hashtags stay together;
// when that is not enough the message is split into follow-up messages
// in the same thread.
func Fit(messages []string, max int) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if max > 0 && Length(m) > max {
			if short, ok := shortenBullets(m, max); ok {
				out = append(out, short)
				continue
			}
		}
		out = append(out, Chunk(m, max)...)
	}
	return out
}

// shortenBullets trims the longest bullet line until the message fits.
// It gives up when no bullet can shrink below minBulletLength.
func shortenBullets(m string, limit int) (string, bool) {
	lines := strings.Split(m, "\n")
	for {
		excess := Length(strings.Join(lines, "\n")) - limit
		if excess <= 0 {
			return strings.Join(lines, "\n"), true
		}

		longest := -1
		for i, line := range lines {
			if strings.HasPrefix(line, bulletPrefix) && (longest < 0 || Length(line) > Length(lines[longest])) {
				longest = i
			}
		}
		if longest < 0 {
			return "", false
		}
		n := Length(lines[longest])
		target := max(n-excess, minBulletLength)
		if target >= n {
			return "", false
		}
		lines[longest] = truncate(lines[longest], target)
	}
}

func bullets(l domain.ListField) string {
	items := l.Head(listItemsPerMessage)
	if len(items) == 0 {
		return bulletPrefix + notAvailable
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = bulletPrefix + item
	}
	return strings.Join(lines, "\n")
}

func price(f domain.Field) string {
	if !f.Found || f.Value == "" {
		return notAvailable
	}
	return "$" + f.Value
}

func sentiment(a domain.ExtractedAnalysis) string {
	if !a.SentimentValue.Found {
		return notAvailable
	}
	if !a.SentimentLabel.Found {
		return a.SentimentValue.Value
	}
	return fmt.Sprintf("%s (%s)", a.SentimentValue.Value, a.SentimentLabel.Value)
}

func hashtag(s string) string {
	return "#" + strings.ReplaceAll(s, " ", "")
}
