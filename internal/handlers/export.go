package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lotus/internal/services"
)

var nationsCSVHeader = []string{
	"Nation Name", "Cities", "Beige Turns", "Color", "Soldiers",
	"Tanks", "Aircraft", "Ships", "Missiles", "Nukes", "Last Active",
}

type ExportHandler struct {
	alliance *services.AllianceService
	now      func() time.Time
}

func NewExportHandler(alliance *services.AllianceService) *ExportHandler {
	return &ExportHandler{alliance: alliance, now: time.Now}
}

func (h *ExportHandler) Nations(w http.ResponseWriter, r *http.Request) {
	nations := h.alliance.AllNations(r.Context())

	rows := make([][]string, 0, len(nations)+1)
	rows = append(rows, nationsCSVHeader)
	for _, n := range nations {
		rows = append(rows, []string{
			n.NationName,
			strconv.Itoa(n.NumCities),
			strconv.Itoa(n.BeigeTurns),
			n.Color,
			strconv.Itoa(n.Soldiers),
			strconv.Itoa(n.Tanks),
			strconv.Itoa(n.Aircraft),
			strconv.Itoa(n.Ships),
			strconv.Itoa(n.Missiles),
			strconv.Itoa(n.Nukes),
			n.LastActive,
		})
	}

	h.writeCSV(w, r, "nations", rows)
}

// Prices writes one row per traded resource. Without a price record only the
// header is written.
func (h *ExportHandler) Prices(w http.ResponseWriter, r *http.Request) {
	rows := [][]string{{"Resource", "Price (USD)"}}
	if prices := h.alliance.ResourcePrices(r.Context()); prices != nil {
		for _, p := range prices.List() {
			rows = append(rows, []string{capitalize(p.Resource), strconv.FormatFloat(p.Price, 'f', -1, 64)})
		}
	}

	h.writeCSV(w, r, "prices", rows)
}

func (h *ExportHandler) writeCSV(w http.ResponseWriter, r *http.Request, prefix string, rows [][]string) {
	filename := prefix + "_" + h.now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV", "export", prefix, "error", err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
