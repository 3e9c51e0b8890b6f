package marketdata

import "encoding/json"

// Section holds one independently-fallible piece of the market snapshot.
// Either Data carries the provider's raw JSON payload or Err carries its
// error marker; downstream code must check OK before treating the payload
// as data.
type Section struct {
	Data json.RawMessage
	Err  string
}

// OK reports whether the section carries usable data
func (s Section) OK() bool {
	return s.Err == "" && len(s.Data) > 0
}

// Snapshot is the objective data bundle for one ticker at fetch time.
// Any sub-section may carry an error marker instead of data; an erroring
// sub-section never fails the snapshot as a whole.
type Snapshot struct {
	Ticker      string
	MarketIndex string
	Chart       Section
	Financial   Section
	News        Section
	Market      Section
}

// ChartIndicators is the technical summary computed by the provider
type ChartIndicators struct {
	CurrentPrice      string `json:"current_price"`
	MA50              string `json:"ma_50"`
	MA200             string `json:"ma_200"`
	Volume            string `json:"volume"`
	RSI14             string `json:"rsi_14"`
	PriceVsMA50Status string `json:"price_vs_ma50_status"`
	MATrendStatus     string `json:"ma_trend_status"`
	RSIStatus         string `json:"rsi_status"`
}

// NewsItem is one related headline
type NewsItem struct {
	Title       string `json:"title"`
	Publisher   string `json:"publisher"`
	Link        string `json:"link"`
	PublishTime string `json:"publish_time"`
}

// MarketIndicators describes the reference index move
type MarketIndicators struct {
	IndexName     string `json:"index_name"`
	CurrentPrice  string `json:"current_price"`
	Change        string `json:"change"`
	ChangePercent string `json:"change_percent"`
	Status        string `json:"status"` // RISING, FALLING
}

// ChartIndicators decodes the chart section; ok is false when the section
// is erroring or malformed.
func (s *Snapshot) ChartIndicators() (*ChartIndicators, bool) {
	if !s.Chart.OK() {
		return nil, false
	}
	var ci ChartIndicators
	if err := json.Unmarshal(s.Chart.Data, &ci); err != nil {
		return nil, false
	}
	return &ci, true
}

// NewsItems decodes the news section
func (s *Snapshot) NewsItems() ([]NewsItem, bool) {
	if !s.News.OK() {
		return nil, false
	}
	var items []NewsItem
	if err := json.Unmarshal(s.News.Data, &items); err != nil {
		return nil, false
	}
	return items, true
}

// MarketIndicators decodes the reference-index section
func (s *Snapshot) MarketIndicators() (*MarketIndicators, bool) {
	if !s.Market.OK() {
		return nil, false
	}
	var mi MarketIndicators
	if err := json.Unmarshal(s.Market.Data, &mi); err != nil {
		return nil, false
	}
	return &mi, true
}
