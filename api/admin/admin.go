// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/api/restutil"
	"github.com/epochfarm/farm/staking"
)

type Admin struct {
	svc   *staking.Service
	epoch farm.EpochSource
}

func New(svc *staking.Service, epoch farm.EpochSource) *Admin {
	return &Admin{svc, epoch}
}

// ManagerRequest names the caller and the account whose manager capability
// is granted or revoked.
type ManagerRequest struct {
	Caller  farm.Account `json:"caller"`
	Account farm.Account `json:"account"`
}

// TagsRequest replaces the eligibility tag set.
type TagsRequest struct {
	Caller farm.Account `json:"caller"`
	Tags   []string     `json:"tags"`
}

// SweepRequest empties custody to the given destination.
type SweepRequest struct {
	Caller farm.Account `json:"caller"`
	To     farm.Account `json:"to"`
}

func (a *Admin) handleListManagers(w http.ResponseWriter, _ *http.Request) error {
	auth := a.svc.Authority()
	return restutil.WriteJSON(w, restutil.M{
		"admin":    auth.Admin(),
		"managers": auth.Managers(),
	})
}

func (a *Admin) handleGrant(w http.ResponseWriter, req *http.Request) error {
	var body ManagerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	granted, err := a.svc.GrantManager(body.Caller, body.Account)
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"granted": granted})
}

func (a *Admin) handleRevoke(w http.ResponseWriter, req *http.Request) error {
	var body ManagerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	revoked, err := a.svc.RevokeManager(body.Caller, body.Account)
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"revoked": revoked})
}

func (a *Admin) handleGetTags(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, restutil.M{"tags": a.svc.EligibilityTags()})
}

func (a *Admin) handleSetTags(w http.ResponseWriter, req *http.Request) error {
	var body TagsRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.svc.SetEligibilityTags(body.Caller, body.Tags, a.epoch.Now()); err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"tags": a.svc.EligibilityTags()})
}

func (a *Admin) handleSweep(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.To.IsZero() {
		return restutil.BadRequest(errors.New("destination required"))
	}
	swept, err := a.svc.Sweep(body.Caller, body.To, a.epoch.Now())
	if err != nil {
		return restutil.RejectError(err)
	}
	return restutil.WriteJSON(w, restutil.M{"swept": swept})
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/managers").
		Methods(http.MethodGet).
		Name("admin_list_managers").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleListManagers))
	sub.Path("/managers").
		Methods(http.MethodPost).
		Name("admin_grant_manager").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGrant))
	sub.Path("/managers").
		Methods(http.MethodDelete).
		Name("admin_revoke_manager").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleRevoke))
	sub.Path("/tags").
		Methods(http.MethodGet).
		Name("admin_get_tags").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetTags))
	sub.Path("/tags").
		Methods(http.MethodPut).
		Name("admin_set_tags").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSetTags))
	sub.Path("/sweep").
		Methods(http.MethodPost).
		Name("admin_sweep").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleSweep))
}
