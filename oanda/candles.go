package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rustyeddy/breakout/market"
)

// CandlesRequest represents parameters for fetching recent candles
type CandlesRequest struct {
	Instrument  string         // Required: e.g. "EUR_USD"
	Price       PriceComponent // default: BidPrice
	Granularity Granularity    // default: D
	Count       int            // max 5000
}

type candleData struct {
	O num `json:"o"`
	H num `json:"h"`
	L num `json:"l"`
	C num `json:"c"`
}

type apiCandle struct {
	Complete bool        `json:"complete"`
	Volume   int         `json:"volume"`
	Time     string      `json:"time"`
	Mid      *candleData `json:"mid,omitempty"`
	Bid      *candleData `json:"bid,omitempty"`
	Ask      *candleData `json:"ask,omitempty"`
}

type candlesResponse struct {
	Instrument  string      `json:"instrument"`
	Granularity string      `json:"granularity"`
	Candles     []apiCandle `json:"candles"`
}

// Candles fetches the most recent candles for an instrument through the
// account endpoint, oldest first. The last candle may still be forming;
// its Complete flag is false.
func (c *Client) Candles(ctx context.Context, accountID string, req CandlesRequest) ([]market.Candle, error) {
	if accountID == "" {
		return nil, fmt.Errorf("oanda: missing account id")
	}
	if req.Instrument == "" {
		return nil, fmt.Errorf("instrument is required")
	}
	if req.Price == "" {
		req.Price = BidPrice
	}
	if req.Granularity == "" {
		req.Granularity = D
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 5000 {
		return nil, fmt.Errorf("count cannot exceed 5000")
	}

	q := url.Values{}
	q.Set("price", string(req.Price))
	q.Set("granularity", string(req.Granularity))
	q.Set("count", strconv.Itoa(req.Count))

	var r candlesResponse
	path := fmt.Sprintf("/v3/accounts/%s/instruments/%s/candles",
		url.PathEscape(accountID), url.PathEscape(req.Instrument))
	if err := c.do(ctx, http.MethodGet, path, q, nil, &r); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(r.Candles))
	for _, ac := range r.Candles {
		var pd *candleData
		switch req.Price {
		case BidPrice:
			pd = ac.Bid
		case AskPrice:
			pd = ac.Ask
		default:
			pd = ac.Mid
		}
		if pd == nil {
			continue
		}

		t, err := parseTime(ac.Time)
		if err != nil {
			return nil, err
		}

		candles = append(candles, market.Candle{
			Open:     float64(pd.O),
			High:     float64(pd.H),
			Low:      float64(pd.L),
			Close:    float64(pd.C),
			Time:     t,
			Volume:   float64(ac.Volume),
			Complete: ac.Complete,
		})
	}
	return candles, nil
}
