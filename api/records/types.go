// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"github.com/pkg/errors"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/auditdb"
)

// JSONFilter is the wire form of an audit record query.
type JSONFilter struct {
	Kinds       []auditdb.Kind `json:"kinds"`
	EventID     *uint64        `json:"eventId"`
	Participant *farm.Account  `json:"participant"`
	Range       *JSONRange     `json:"range"`
	Order       string         `json:"order"`
	Options     *JSONOptions   `json:"options"`
}

// JSONRange bounds a filter by epoch, inclusive.
type JSONRange struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to"`
}

// JSONOptions pages a filtered result set.
type JSONOptions struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

func convertFilter(jf *JSONFilter, maxLimit uint64) (*auditdb.Filter, error) {
	filter := &auditdb.Filter{
		Kinds:       jf.Kinds,
		EventID:     jf.EventID,
		Participant: jf.Participant,
	}
	if jf.Range != nil {
		filter.Range = &auditdb.EpochRange{From: jf.Range.From, To: jf.Range.To}
	}
	switch jf.Order {
	case "", "asc":
		filter.Order = auditdb.ASC
	case "desc":
		filter.Order = auditdb.DESC
	default:
		return nil, errors.New("order: expected asc or desc")
	}
	if jf.Options == nil {
		filter.Options = &auditdb.Options{Limit: maxLimit}
	} else if jf.Options.Limit > maxLimit {
		return nil, errors.Errorf("options.limit: exceeds maximum of %d", maxLimit)
	} else {
		filter.Options = &auditdb.Options{Offset: jf.Options.Offset, Limit: jf.Options.Limit}
	}
	return filter, nil
}

// JSONRecord is the wire form of one audit record.
type JSONRecord struct {
	Seq         uint64       `json:"seq"`
	Kind        auditdb.Kind `json:"kind"`
	EventID     uint64       `json:"eventId,omitempty"`
	Participant farm.Account `json:"participant"`
	Amount      uint64       `json:"amount"`
	Units       uint64       `json:"units,omitempty"`
	Reward      uint64       `json:"reward,omitempty"`
	Epoch       uint32       `json:"epoch"`
	Detail      string       `json:"detail,omitempty"`
}

func convertRecord(r *auditdb.Record) *JSONRecord {
	return &JSONRecord{
		Seq:         r.Seq,
		Kind:        r.Kind,
		EventID:     r.EventID,
		Participant: r.Participant,
		Amount:      r.Amount,
		Units:       r.Units,
		Reward:      r.Reward,
		Epoch:       r.Epoch,
		Detail:      r.Detail,
	}
}
