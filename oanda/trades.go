package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type apiTrade struct {
	ID           string `json:"id"`
	Instrument   string `json:"instrument"`
	Price        num    `json:"price"`
	OpenTime     string `json:"openTime"`
	InitialUnits num    `json:"initialUnits"`
	CurrentUnits num    `json:"currentUnits"`
	RealizedPL   num    `json:"realizedPL"`
	UnrealizedPL num    `json:"unrealizedPL"`
	Financing    num    `json:"financing"`

	StopLossOrder *struct {
		ID    string `json:"id"`
		Price num    `json:"price"`
	} `json:"stopLossOrder,omitempty"`
}

type openTradesResp struct {
	Trades []apiTrade `json:"trades"`
}

// OpenTrades lists the account's currently open trades.
func (c *Client) OpenTrades(ctx context.Context, accountID string) ([]Trade, error) {
	if accountID == "" {
		return nil, fmt.Errorf("oanda: missing account id")
	}
	var r openTradesResp
	path := fmt.Sprintf("/v3/accounts/%s/openTrades", url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &r); err != nil {
		return nil, err
	}

	out := make([]Trade, 0, len(r.Trades))
	for _, at := range r.Trades {
		t, err := parseTime(at.OpenTime)
		if err != nil {
			return nil, err
		}
		tr := Trade{
			ID:           at.ID,
			Instrument:   at.Instrument,
			Price:        float64(at.Price),
			OpenTime:     t,
			InitialUnits: float64(at.InitialUnits),
			CurrentUnits: float64(at.CurrentUnits),
			RealizedPL:   float64(at.RealizedPL),
			UnrealizedPL: float64(at.UnrealizedPL),
			Financing:    float64(at.Financing),
		}
		if at.StopLossOrder != nil {
			tr.StopLossOrderID = at.StopLossOrder.ID
			tr.StopLossPrice = float64(at.StopLossOrder.Price)
		}
		out = append(out, tr)
	}
	return out, nil
}

type orderBody struct {
	Order orderSpec `json:"order"`
}

type orderSpec struct {
	Type             string            `json:"type"`
	Instrument       string            `json:"instrument"`
	Units            string            `json:"units"`
	TimeInForce      string            `json:"timeInForce"`
	PriceBound       string            `json:"priceBound,omitempty"`
	PositionFill     string            `json:"positionFill"`
	StopLossOnFill   *stopLossDetails  `json:"stopLossOnFill,omitempty"`
	ClientExtensions *clientExtensions `json:"clientExtensions,omitempty"`
}

type stopLossDetails struct {
	Price string `json:"price"`
}

type clientExtensions struct {
	ID string `json:"id"`
}

type cancelTx struct {
	ID      string `json:"id"`
	OrderID string `json:"orderID"`
	Reason  string `json:"reason"`
}

type orderResp struct {
	OrderCreateTransaction *struct {
		ID string `json:"id"`
	} `json:"orderCreateTransaction,omitempty"`
	OrderFillTransaction *struct {
		ID          string `json:"id"`
		Time        string `json:"time"`
		Price       num    `json:"price"`
		TradeOpened *struct {
			TradeID string `json:"tradeID"`
			Units   num    `json:"units"`
			Price   num    `json:"price"`
		} `json:"tradeOpened,omitempty"`
		TradesClosed []struct {
			TradeID    string `json:"tradeID"`
			Units      num    `json:"units"`
			RealizedPL num    `json:"realizedPL"`
		} `json:"tradesClosed,omitempty"`
	} `json:"orderFillTransaction,omitempty"`
	OrderCancelTransaction *cancelTx `json:"orderCancelTransaction,omitempty"`
	RelatedTransactionIDs  []string  `json:"relatedTransactionIDs,omitempty"`
}

// stopLossOrderID picks the related transaction that is neither the order
// create nor its fill. With stopLossOnFill that is the stop-loss order.
func (r orderResp) stopLossOrderID() string {
	skip := map[string]bool{}
	if r.OrderCreateTransaction != nil {
		skip[r.OrderCreateTransaction.ID] = true
	}
	if r.OrderFillTransaction != nil {
		skip[r.OrderFillTransaction.ID] = true
	}
	for _, id := range r.RelatedTransactionIDs {
		if !skip[id] {
			return id
		}
	}
	return ""
}

// CreateMarketOrder submits a fill-or-kill market order that may only open
// a new trade. A cancellation is reported in the result, not as an error.
func (c *Client) CreateMarketOrder(ctx context.Context, accountID string, mo MarketOrder) (OrderResult, error) {
	if accountID == "" {
		return OrderResult{}, fmt.Errorf("oanda: missing account id")
	}
	if mo.Instrument == "" || mo.Units == "" {
		return OrderResult{}, fmt.Errorf("oanda: order needs instrument and units")
	}

	spec := orderSpec{
		Type:         "MARKET",
		Instrument:   mo.Instrument,
		Units:        mo.Units,
		TimeInForce:  "FOK",
		PriceBound:   mo.PriceBound,
		PositionFill: "OPEN_ONLY",
	}
	if mo.StopLoss != "" {
		spec.StopLossOnFill = &stopLossDetails{Price: mo.StopLoss}
	}
	if mo.ClientID != "" {
		spec.ClientExtensions = &clientExtensions{ID: mo.ClientID}
	}

	var r orderResp
	path := fmt.Sprintf("/v3/accounts/%s/orders", url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodPost, path, nil, orderBody{Order: spec}, &r); err != nil {
		return OrderResult{}, err
	}

	var res OrderResult
	if r.OrderCreateTransaction != nil {
		res.OrderID = r.OrderCreateTransaction.ID
	}
	if r.OrderCancelTransaction != nil {
		res.Cancelled = true
		res.CancelReason = r.OrderCancelTransaction.Reason
		return res, nil
	}
	if f := r.OrderFillTransaction; f != nil {
		t, err := parseTime(f.Time)
		if err != nil {
			return res, err
		}
		res.Time = t
		res.Price = float64(f.Price)
		if f.TradeOpened != nil {
			res.TradeID = f.TradeOpened.TradeID
			res.Units = float64(f.TradeOpened.Units)
			if f.TradeOpened.Price != 0 {
				res.Price = float64(f.TradeOpened.Price)
			}
		}
		if mo.StopLoss != "" {
			res.StopLossOrderID = r.stopLossOrderID()
		}
	}
	return res, nil
}

// CloseTrade closes all remaining units of an open trade.
func (c *Client) CloseTrade(ctx context.Context, accountID, tradeID string) (CloseResult, error) {
	if accountID == "" {
		return CloseResult{}, fmt.Errorf("oanda: missing account id")
	}
	if tradeID == "" {
		return CloseResult{}, fmt.Errorf("oanda: missing trade id")
	}

	var r orderResp
	path := fmt.Sprintf("/v3/accounts/%s/trades/%s/close", url.PathEscape(accountID), url.PathEscape(tradeID))
	body := map[string]string{"units": "ALL"}
	if err := c.do(ctx, http.MethodPut, path, nil, body, &r); err != nil {
		return CloseResult{}, err
	}

	res := CloseResult{TradeID: tradeID}
	if r.OrderCancelTransaction != nil {
		res.Cancelled = true
		res.CancelReason = r.OrderCancelTransaction.Reason
		return res, nil
	}
	if f := r.OrderFillTransaction; f != nil {
		t, err := parseTime(f.Time)
		if err != nil {
			return res, err
		}
		res.Time = t
		res.Price = float64(f.Price)
		for _, tc := range f.TradesClosed {
			if tc.TradeID == tradeID {
				res.Units = float64(tc.Units)
				res.RealizedPL = float64(tc.RealizedPL)
			}
		}
	}
	return res, nil
}
