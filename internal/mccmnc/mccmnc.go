package mccmnc

import (
	"encoding/json"
	"os"
	"sync"
)

// NetworkOperator represents an entry in mcc_mnc.json
type NetworkOperator struct {
	MCC         string `json:"mcc"`
	MNC         string `json:"mnc"`
	ISO         string `json:"iso"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Name        string `json:"name"`
}

// PLMN is the MCC followed by the MNC, as COPS reports it in numeric format.
func (o NetworkOperator) PLMN() string {
	return o.MCC + o.MNC
}

var (
	mu        sync.RWMutex
	operators = map[string]NetworkOperator{}
)

// LoadOperators loads the mcc_mnc.json file, replacing any table loaded before.
func LoadOperators(path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Parse(file)
}

// Parse loads operators from the JSON array form of mcc_mnc.json.
func Parse(data []byte) error {
	var list []NetworkOperator
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	table := make(map[string]NetworkOperator, len(list))
	for _, op := range list {
		if _, dup := table[op.PLMN()]; !dup {
			table[op.PLMN()] = op
		}
	}

	mu.Lock()
	operators = table
	mu.Unlock()
	return nil
}

// GetOperatorName finds the operator name for a given MCC and MNC
func GetOperatorName(mcc, mnc string) string {
	mu.RLock()
	defer mu.RUnlock()
	return operators[mcc+mnc].Name
}

// Lookup resolves a numeric PLMN such as "44010". The MCC is always three
// digits; the MNC is the rest.
func Lookup(plmn string) (NetworkOperator, bool) {
	if len(plmn) < 5 || len(plmn) > 6 {
		return NetworkOperator{}, false
	}
	mu.RLock()
	defer mu.RUnlock()
	op, ok := operators[plmn]
	return op, ok
}
