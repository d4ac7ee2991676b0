package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ReserveEntry pairs a token address with its kind-specific reserve
// payload.
type ReserveEntry struct {
	Token   string
	Reserve interface{}
}

// OrderedReserves marshals as a JSON object whose keys appear in slice
// order. Constant product pools sort entries by token address at
// encode time; weighted and stable pools keep the pool's insertion
// order. Both orderings are part of the wire contract and must not be
// left to map iteration.
type OrderedReserves []ReserveEntry

// MarshalJSON emits the reserve map with keys in slice order.
func (r OrderedReserves) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Token)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(entry.Reserve)
		if err != nil {
			return nil, fmt.Errorf("marshal reserve %s: %w", entry.Token, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TickEntry is one initialized tick and its signed net liquidity
// delta.
type TickEntry struct {
	Tick int32
	Net  string
}

// TickMap marshals the tick to net-liquidity-delta mapping as a JSON
// object with stringified tick keys, in slice order. The encoder sorts
// entries numerically by tick.
type TickMap []TickEntry

// MarshalJSON emits the tick map with stringified keys in slice order.
func (m TickMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(int64(entry.Tick), 10))
		buf.WriteString(`":"`)
		buf.WriteString(entry.Net)
		buf.WriteByte('"')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
