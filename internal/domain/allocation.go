package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// AssetClass is the canonical asset-class label shared by goal allocations,
// risk-profile recommendations and portfolio holdings.
type AssetClass string

const (
	AssetEquity      AssetClass = "equity"
	AssetBonds       AssetClass = "bonds"
	AssetMoneyMarket AssetClass = "money_market"
	AssetAlternative AssetClass = "alternative"
)

// AssetClasses lists every asset class in canonical order.
var AssetClasses = []AssetClass{AssetEquity, AssetBonds, AssetMoneyMarket, AssetAlternative}

func (c AssetClass) Valid() bool {
	for _, a := range AssetClasses {
		if a == c {
			return true
		}
	}
	return false
}

// ParseAssetClass accepts the canonical label in any case.
func ParseAssetClass(s string) (AssetClass, bool) {
	a := AssetClass(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", false
	}
	return a, true
}

// Allocation is a percentage split across the asset classes. A zero value
// means "no allocation" and is stored as NULL.
type Allocation struct {
	Equity      float64 `json:"equity"`
	Bonds       float64 `json:"bonds"`
	MoneyMarket float64 `json:"money_market"`
	Alternative float64 `json:"alternative"`
}

// Get returns the percentage held in class a.
func (a Allocation) Get(c AssetClass) float64 {
	switch c {
	case AssetEquity:
		return a.Equity
	case AssetBonds:
		return a.Bonds
	case AssetMoneyMarket:
		return a.MoneyMarket
	case AssetAlternative:
		return a.Alternative
	}
	return 0
}

// Set assigns the percentage for class c.
func (a *Allocation) Set(c AssetClass, pct float64) {
	switch c {
	case AssetEquity:
		a.Equity = pct
	case AssetBonds:
		a.Bonds = pct
	case AssetMoneyMarket:
		a.MoneyMarket = pct
	case AssetAlternative:
		a.Alternative = pct
	}
}

// Weights returns the percentages in AssetClasses order.
func (a Allocation) Weights() []float64 {
	return []float64{a.Equity, a.Bonds, a.MoneyMarket, a.Alternative}
}

func (a Allocation) Total() float64 {
	return a.Equity + a.Bonds + a.MoneyMarket + a.Alternative
}

func (a Allocation) IsZero() bool {
	return a == Allocation{}
}

// Scan implements sql.Scanner for the json column.
func (a *Allocation) Scan(value interface{}) error {
	if value == nil {
		*a = Allocation{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for Allocation")
	}
	if len(b) == 0 || string(b) == "null" {
		*a = Allocation{}
		return nil
	}
	return json.Unmarshal(b, a)
}

// Value implements driver.Valuer; an empty allocation is written as NULL.
func (a Allocation) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
