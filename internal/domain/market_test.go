package domain

import "testing"

func TestParsePair(t *testing.T) {
	cases := []struct {
		in   string
		want Pair
	}{
		{"BTCUSDT", Pair{Base: "BTC", Quote: "USDT"}},
		{"ethusdc", Pair{Base: "ETH", Quote: "USDC"}},
		{"btc/usd", Pair{Base: "BTC", Quote: "USD"}},
		{" SOL-BRL ", Pair{Base: "SOL", Quote: "BRL"}},
		{"ETHBTC", Pair{Base: "ETH", Quote: "BTC"}},
	}
	for _, tc := range cases {
		got, err := ParsePair(tc.in)
		if err != nil {
			t.Fatalf("ParsePair(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParsePair(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParsePairRejects(t *testing.T) {
	for _, in := range []string{"", "USDT", "BTC/", "XYZABC"} {
		if _, err := ParsePair(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestPairSymbol(t *testing.T) {
	p := Pair{Base: "BTC", Quote: "USDT"}
	if p.Symbol() != "BTCUSDT" || p.String() != "BTC/USDT" {
		t.Fatalf("unexpected renderings: %s %s", p.Symbol(), p.String())
	}
}

func TestTickerFieldsOrder(t *testing.T) {
	snap := TickerSnapshot{LastPrice: "1", PriceChangePercent: "2", Volume: "3", QuoteVolume: "4", HighPrice: "5", LowPrice: "6"}
	fields := snap.Fields()
	want := []string{"lastPrice", "priceChangePercent", "volume", "quoteVolume", "highPrice", "lowPrice"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i, f := range fields {
		if f.Name != want[i] {
			t.Fatalf("field %d: expected %s, got %s", i, want[i], f.Name)
		}
	}
}

func TestFieldHelpers(t *testing.T) {
	if (Field{}).Or("n/a") != "n/a" {
		t.Fatal("missing field should fall back")
	}
	if Found("").Or("n/a") != "" {
		t.Fatal("found empty field should keep its value")
	}
	l := ListField{Items: []string{"a", "b", "c"}, Found: true}
	if got := l.Head(2); len(got) != 2 || got[1] != "b" {
		t.Fatalf("unexpected head: %v", got)
	}
	if got := l.Head(5); len(got) != 3 {
		t.Fatalf("unexpected head: %v", got)
	}
}

func TestPairName(t *testing.T) {
	if got := (Pair{Base: "BTC", Quote: "USDT"}).Name(); got != "Bitcoin" {
		t.Fatalf("expected Bitcoin, got %s", got)
	}
	if got := AssetName("pepe"); got != "PEPE" {
		t.Fatalf("expected upper-cased fallback, got %s", got)
	}
}
