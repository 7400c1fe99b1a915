package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
)

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse ask request",
			errors.New("invalid json")))
		return
	}

	tenant := tenantFromContext(r.Context())
	start := time.Now()

	answer, err := rt.answerer.Ask(r.Context(), tenant, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAskObservation(serviceName, len(answer.Citations), time.Since(start))
		if answer.Fallback {
			rt.metrics.RecordAskFallback(serviceName, answer.FallbackReason)
		}
	}
	writeJSON(w, http.StatusOK, answer)
}
