package models

// Quote is the normalized stock quote, whichever provider supplied it.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	Provider      string  `json:"provider"`
}

type Weather struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"` // °C
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"` // m/s
	Pressure    int     `json:"pressure"`
	Visibility  int     `json:"visibility"` // km
}

type Race struct {
	RaceName    string `json:"raceName"`
	CircuitName string `json:"circuitName"`
	Date        string `json:"date"`
	Time        string `json:"time"` // "TBA" when the schedule has none
	Country     string `json:"country"`
	Locality    string `json:"locality"`
	Placeholder bool   `json:"placeholder,omitempty"`
}
