package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a game API identifier. The API serializes IDs as strings, older
// fields still come back as numbers.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", data, err)
	}
	*id = ID(v)
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type PositionInfo struct {
	Name string `json:"name"`
}

type Nation struct {
	ID                   ID            `json:"id"`
	NationName           string        `json:"nation_name"`
	AllianceID           ID            `json:"alliance_id"`
	AlliancePosition     string        `json:"alliance_position"`
	AlliancePositionInfo *PositionInfo `json:"alliance_position_info"`
	NumCities            int           `json:"num_cities"`
	BeigeTurns           int           `json:"beige_turns"`
	Projects             int           `json:"projects"`
	Soldiers             int           `json:"soldiers"`
	Tanks                int           `json:"tanks"`
	Aircraft             int           `json:"aircraft"`
	Ships                int           `json:"ships"`
	Missiles             int           `json:"missiles"`
	Nukes                int           `json:"nukes"`
	Color                string        `json:"color"`
	LastActive           string        `json:"last_active"`
}

// Position returns the alliance's custom name for the nation's position,
// falling back to the position enum. Empty when neither is present.
func (n *Nation) Position() string {
	if n.AlliancePositionInfo != nil && n.AlliancePositionInfo.Name != "" {
		return n.AlliancePositionInfo.Name
	}
	return n.AlliancePosition
}

type WarNation struct {
	ID         ID     `json:"id"`
	NationName string `json:"nation_name"`
}

type War struct {
	ID        ID         `json:"id"`
	WarType   string     `json:"war_type"`
	TurnsLeft int        `json:"turns_left"`
	Attacker  *WarNation `json:"attacker"`
	Defender  *WarNation `json:"defender"`
}

func (w *War) AttackerName() string {
	if w.Attacker == nil {
		return ""
	}
	return w.Attacker.NationName
}

func (w *War) DefenderName() string {
	if w.Defender == nil {
		return ""
	}
	return w.Defender.NationName
}

// Resources traded on the market, in display order.
var TradedResources = []string{
	"food", "coal", "oil", "uranium", "lead", "iron",
	"bauxite", "gasoline", "munitions", "steel", "aluminum",
}

// BankResources are the fields a bank transfer can move.
var BankResources = append([]string{"money"}, TradedResources...)

type TradePrices struct {
	Food      float64 `json:"food"`
	Coal      float64 `json:"coal"`
	Oil       float64 `json:"oil"`
	Uranium   float64 `json:"uranium"`
	Lead      float64 `json:"lead"`
	Iron      float64 `json:"iron"`
	Bauxite   float64 `json:"bauxite"`
	Gasoline  float64 `json:"gasoline"`
	Munitions float64 `json:"munitions"`
	Steel     float64 `json:"steel"`
	Aluminum  float64 `json:"aluminum"`
}

func (p *TradePrices) Price(resource string) (float64, bool) {
	switch resource {
	case "food":
		return p.Food, true
	case "coal":
		return p.Coal, true
	case "oil":
		return p.Oil, true
	case "uranium":
		return p.Uranium, true
	case "lead":
		return p.Lead, true
	case "iron":
		return p.Iron, true
	case "bauxite":
		return p.Bauxite, true
	case "gasoline":
		return p.Gasoline, true
	case "munitions":
		return p.Munitions, true
	case "steel":
		return p.Steel, true
	case "aluminum":
		return p.Aluminum, true
	}
	return 0, false
}

type ResourcePrice struct {
	Resource string
	Price    float64
}

// List returns the prices in TradedResources order.
func (p *TradePrices) List() []ResourcePrice {
	out := make([]ResourcePrice, 0, len(TradedResources))
	for _, r := range TradedResources {
		v, _ := p.Price(r)
		out = append(out, ResourcePrice{Resource: r, Price: v})
	}
	return out
}
