package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type accountsResp struct {
	Accounts []struct {
		ID string `json:"id"`
	} `json:"accounts"`
}

// Accounts lists the account ids the token is authorized for.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var r accountsResp
	if err := c.do(ctx, http.MethodGet, "/v3/accounts", nil, nil, &r); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

type summaryResp struct {
	Account struct {
		ID              string `json:"id"`
		Alias           string `json:"alias"`
		Currency        string `json:"currency"`
		Balance         num    `json:"balance"`
		NAV             num    `json:"NAV"`
		UnrealizedPL    num    `json:"unrealizedPL"`
		MarginUsed      num    `json:"marginUsed"`
		MarginAvailable num    `json:"marginAvailable"`
		OpenTradeCount  int    `json:"openTradeCount"`
	} `json:"account"`
}

func (c *Client) AccountSummary(ctx context.Context, accountID string) (AccountSummary, error) {
	if accountID == "" {
		return AccountSummary{}, fmt.Errorf("oanda: missing account id")
	}
	var r summaryResp
	path := fmt.Sprintf("/v3/accounts/%s/summary", url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &r); err != nil {
		return AccountSummary{}, err
	}
	a := r.Account
	return AccountSummary{
		ID:              a.ID,
		Alias:           a.Alias,
		Currency:        a.Currency,
		Balance:         float64(a.Balance),
		NAV:             float64(a.NAV),
		UnrealizedPL:    float64(a.UnrealizedPL),
		MarginUsed:      float64(a.MarginUsed),
		MarginAvailable: float64(a.MarginAvailable),
		OpenTradeCount:  a.OpenTradeCount,
	}, nil
}

type instrumentsResp struct {
	Instruments []struct {
		Name                string `json:"name"`
		Type                string `json:"type"`
		DisplayName         string `json:"displayName"`
		PipLocation         int    `json:"pipLocation"`
		DisplayPrecision    int    `json:"displayPrecision"`
		TradeUnitsPrecision int    `json:"tradeUnitsPrecision"`
		MinimumTradeSize    num    `json:"minimumTradeSize"`
		MarginRate          num    `json:"marginRate"`
	} `json:"instruments"`
}

// Instruments returns the tradeable instruments of an account, optionally
// filtered to names.
func (c *Client) Instruments(ctx context.Context, accountID string, names ...string) ([]Instrument, error) {
	if accountID == "" {
		return nil, fmt.Errorf("oanda: missing account id")
	}
	q := url.Values{}
	if len(names) > 0 {
		q.Set("instruments", strings.Join(names, ","))
	}

	var r instrumentsResp
	path := fmt.Sprintf("/v3/accounts/%s/instruments", url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodGet, path, q, nil, &r); err != nil {
		return nil, err
	}

	out := make([]Instrument, 0, len(r.Instruments))
	for _, in := range r.Instruments {
		out = append(out, Instrument{
			Name:                in.Name,
			Type:                in.Type,
			DisplayName:         in.DisplayName,
			PipLocation:         in.PipLocation,
			DisplayPrecision:    in.DisplayPrecision,
			TradeUnitsPrecision: in.TradeUnitsPrecision,
			MinimumTradeSize:    float64(in.MinimumTradeSize),
			MarginRate:          float64(in.MarginRate),
		})
	}
	return out, nil
}
