// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/api/restutil"
	"github.com/epochfarm/farm/staking"
	"github.com/epochfarm/farm/staking/event"
)

type Events struct {
	svc   *staking.Service
	epoch farm.EpochSource
}

func New(svc *staking.Service, epoch farm.EpochSource) *Events {
	return &Events{svc, epoch}
}

func (e *Events) handleList(w http.ResponseWriter, _ *http.Request) error {
	list := e.svc.ListEvents()
	out := make([]*JSONEvent, 0, len(list))
	for _, ev := range list {
		out = append(out, convertEvent(ev))
	}
	return restutil.WriteJSON(w, out)
}

func (e *Events) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body CreateEventRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Caller.IsZero() {
		return restutil.BadRequest(errors.New("caller required"))
	}

	ev, err := e.svc.CreateEvent(body.Caller, event.Config{
		StartEpoch:          body.StartEpoch,
		EndEpoch:            body.EndEpoch,
		RewardPool:          body.RewardPool,
		Funding:             body.Funding,
		RequiresEligibility: body.RequiresEligibility,
		MaxPerWallet:        body.MaxPerWallet,
	}, e.epoch.Now())
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, convertEvent(ev))
}

func (e *Events) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	ev, err := e.svc.GetEvent(id)
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, convertEvent(ev))
}

func (e *Events) handleRemaining(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	now := e.epoch.Now()
	epochs, err := e.svc.RemainingEpochs(id, now)
	if err != nil {
		return restutil.RejectError(err)
	}
	duration, err := e.svc.RemainingDuration(id, now)
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, &JSONRemaining{Epochs: epochs, Duration: duration})
}

func (e *Events) handleRate(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	rate, err := e.svc.GlobalRate(id)
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, convertRate(rate))
}

func (e *Events) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	flipped, err := e.svc.RefreshEventStatus(id, e.epoch.Now())
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"flipped": flipped})
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("events_list").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleList))
	sub.Path("").
		Methods(http.MethodPost).
		Name("events_create").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleCreate))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("events_get").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGet))
	sub.Path("/{id}/remaining").
		Methods(http.MethodGet).
		Name("events_get_remaining").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleRemaining))
	sub.Path("/{id}/rate").
		Methods(http.MethodGet).
		Name("events_get_rate").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleRate))
	sub.Path("/{id}/refresh").
		Methods(http.MethodPost).
		Name("events_refresh").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleRefresh))
}
