package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		intent Intent
		param  string
	}{
		{name: "weather", text: "What's the weather in Tokyo?", intent: Weather, param: "Tokyo"},
		{name: "weather_default_location", text: "how is the weather today", intent: Weather, param: DefaultLocation},
		{name: "weather_upper", text: "WEATHER IN Paris", intent: Weather, param: "Paris"},
		{name: "weather_beats_stock", text: "weather in Oslo and the Equinor stock price", intent: Weather, param: "Oslo"},
		{name: "weather_beats_f1", text: "will the weather in Monza affect the F1 race", intent: Weather, param: "Monza"},
		{name: "f1", text: "When is the next F1 race?", intent: F1},
		{name: "formula", text: "formula one schedule", intent: F1},
		{name: "f1_beats_stock", text: "Ferrari stock after the race", intent: F1},
		{name: "stock_whats", text: "What's Microsoft stock price?", intent: Stock, param: "Microsoft"},
		{name: "stock_x_stock_price", text: "TCS stock price", intent: Stock, param: "TCS"},
		{name: "stock_possessive", text: "Apple's stock", intent: Stock, param: "Apple"},
		{name: "stock_price_of", text: "stock price of Tesla", intent: Stock, param: "Tesla"},
		{name: "price_of", text: "price of Infosys?", intent: Stock, param: "Infosys"},
		{name: "stock_fallback", text: "nvidia price", intent: Stock, param: "nvidia"},
		{name: "other", text: "hello there", intent: Other},
		{name: "empty", text: "", intent: Other},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.text)
			if got.Intent != tc.intent {
				t.Fatalf("Classify(%q).Intent = %q, want %q", tc.text, got.Intent, tc.intent)
			}
			if got.Param != tc.param {
				t.Fatalf("Classify(%q).Param = %q, want %q", tc.text, got.Param, tc.param)
			}
		})
	}
}

func TestWeatherAlwaysWins(t *testing.T) {
	for _, text := range []string{
		"weather",
		"Weather stock price f1 formula race",
		"stock price then WeAtHeR",
		"race weather",
	} {
		if got := Classify(text).Intent; got != Weather {
			t.Errorf("Classify(%q) = %q, want weather", text, got)
		}
	}
}

func TestExtractCompanyStopwordFallback(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"the price", ""},
		{"What's the stock price?", ""},
		{"reliance industries price", "reliance industries"},
	}
	for _, tc := range tests {
		if got := ExtractCompany(tc.text); got != tc.want {
			t.Errorf("ExtractCompany(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
