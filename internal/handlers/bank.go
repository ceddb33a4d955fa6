package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lotus/internal/middleware"
	"lotus/internal/models"
	"lotus/internal/services"
)

type BankHandler struct {
	bank *services.BankService
}

func NewBankHandler(bank *services.BankService) *BankHandler {
	return &BankHandler{bank: bank}
}

// SendResources accepts {"recipient_id": N, "<resource>": amount, ...}.
// Amounts and the recipient may be JSON numbers or numeric strings.
func (h *BankHandler) SendResources(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var recipient flexInt
	if raw, ok := body["recipient_id"]; ok {
		if err := json.Unmarshal(raw, &recipient); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid recipient_id")
			return
		}
	}

	amounts := make(map[string]float64)
	for _, resource := range models.BankResources {
		raw, ok := body[resource]
		if !ok {
			continue
		}
		var n flexNumber
		if err := json.Unmarshal(raw, &n); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid amount for "+resource)
			return
		}
		if n.set {
			amounts[resource] = n.value
		}
	}

	_, err := h.bank.SendResources(r.Context(), middleware.GetAccount(r), recipient.value, amounts)
	switch {
	case err == nil:
		writeSuccess(w, "Resources sent successfully")
	case errors.Is(err, services.ErrNoCredential):
		writeError(w, http.StatusBadRequest, "API key not set. Please update your profile.")
	case errors.Is(err, services.ErrNoResources):
		writeError(w, http.StatusBadRequest, "No resources specified")
	case errors.Is(err, services.ErrInvalidRecipient):
		writeError(w, http.StatusBadRequest, "Recipient nation ID is required")
	default:
		slog.ErrorContext(r.Context(), "Resource send error", "error", err)
		writeError(w, http.StatusInternalServerError, "Error: "+err.Error())
	}
}
