package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Use(withGZip)
		r.Post("/api/user/register", h.register)
		r.Post("/api/user/login", h.login)
		r.Get("/api/version", h.getServerVersion)
		r.Get("/api/info", h.getServerInfo)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		// the push channel is hijacked, so it stays outside gzip
		r.Get("/api/records/ws", h.pushChannel)

		r.Group(func(r chi.Router) {
			r.Use(withGZip)
			r.Get("/api/records", h.listRecords)
			r.Get("/api/records/page/{page}", h.getPage)
			r.Post("/api/records", h.createRecord)
			r.Put("/api/records/{id}", h.updateRecord)
			r.Delete("/api/records/{id}", h.deleteRecord)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
