package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/operations", h.Operations)
		r.Post("/evaluate", h.Evaluate)

		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)

			r.Post("/operand", h.SetOperand)
			r.Post("/variable", h.SetVariable)
			r.Post("/operation", h.PerformOperation)
			r.Post("/undo", h.Undo)
			r.Post("/clear", h.Clear)
			r.Post("/evaluate", h.EvaluateSession)

			r.Get("/variables", h.Variables)
			r.Get("/variables/{name}", h.Variable)
			r.Put("/variables/{name}", h.StoreVariable)
			r.Delete("/variables/{name}", h.ForgetVariable)

			r.Get("/graph", h.Graph)
		})
	})
}
