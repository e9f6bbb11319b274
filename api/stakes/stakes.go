// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/api/restutil"
	"github.com/epochfarm/farm/staking"
)

type Stakes struct {
	svc   *staking.Service
	epoch farm.EpochSource
}

func New(svc *staking.Service, epoch farm.EpochSource) *Stakes {
	return &Stakes{svc, epoch}
}

func (s *Stakes) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Participant.IsZero() {
		return restutil.BadRequest(errors.New("participant required"))
	}

	now := s.epoch.Now()
	if err := s.svc.Deposit(body.Participant, body.EventID, body.Amount, now); err != nil {
		return restutil.RejectError(err)
	}
	stake := s.svc.GetStake(body.EventID, body.Participant)
	return restutil.WriteJSON(w, convertStake(&stake))
}

func (s *Stakes) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Participant.IsZero() {
		return restutil.BadRequest(errors.New("participant required"))
	}

	res, err := s.svc.Claim(body.Participant, body.EventID, s.epoch.Now())
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, &JSONClaim{
		Amount: res.Amount,
		Reward: res.Reward,
		Payout: res.Payout,
	})
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, participant, err := parseKey(req)
	if err != nil {
		return restutil.BadRequest(err)
	}
	if _, err := s.svc.GetEvent(id); err != nil {
		return restutil.RejectError(err)
	}

	stake := s.svc.GetStake(id, participant)
	share, err := s.svc.ProjectedShare(id, participant)
	if err != nil {
		return restutil.RejectError(err)
	}
	rate, err := s.svc.PersonalRate(id, participant)
	if err != nil {
		return restutil.RejectError(err)
	}

	out := convertStake(&stake)
	out.ProjectedReward = share
	out.Rate = convertRate(rate)
	return restutil.WriteJSON(w, out)
}

func (s *Stakes) handleParticipants(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	if _, err := s.svc.GetEvent(id); err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, &JSONParticipants{
		Count:        s.svc.CountParticipants(id),
		Participants: s.svc.Participants(id),
	})
}

func parseKey(req *http.Request) (uint64, farm.Account, error) {
	vars := mux.Vars(req)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		return 0, "", errors.WithMessage(err, "id")
	}
	participant := farm.Account(vars["participant"])
	if participant.IsZero() {
		return 0, "", errors.New("participant required")
	}
	return id, participant, nil
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodPost).
		Name("stakes_deposit").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/claims").
		Methods(http.MethodPost).
		Name("stakes_claim").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleClaim))
	sub.Path("/{id}/participants").
		Methods(http.MethodGet).
		Name("stakes_get_participants").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleParticipants))
	sub.Path("/{id}/{participant}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
}
