// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/epochfarm/farm/api/restutil"
	"github.com/epochfarm/farm/auditdb"
)

type Records struct {
	db    *auditdb.AuditDB
	limit uint64
}

func New(db *auditdb.AuditDB, limit uint64) *Records {
	return &Records{db, limit}
}

func (r *Records) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var jf JSONFilter
	if err := restutil.ParseJSON(req.Body, &jf); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	filter, err := convertFilter(&jf, r.limit)
	if err != nil {
		return restutil.BadRequest(err)
	}
	found, err := r.db.FilterRecords(req.Context(), filter)
	if err != nil {
		return err
	}

	out := make([]*JSONRecord, 0, len(found))
	for _, rec := range found {
		out = append(out, convertRecord(rec))
	}
	return restutil.WriteJSON(w, out)
}

func (r *Records) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodPost).
		Name("records_filter").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleFilter))
}
