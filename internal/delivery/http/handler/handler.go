package handler

import (
	"net/http"
	"strconv"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/pkg/response"

	"github.com/gorilla/mux"
)

// Redirects are the landing paths for refused requests.
type Redirects struct {
	Login     string
	Forbidden string
}

// actor reads the authenticated actor or redirects to the login page.
func actor(w http.ResponseWriter, r *http.Request, redirects Redirects) (entity.Actor, bool) {
	a, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Redirect(w, r, redirects.Login)
	}
	return a, ok
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// pageParams reads page and limit; invalid values fall back to the defaults.
func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
