package api

import (
	"net/http"

	"github.com/ljn0099/picoweather/internal/router"
)

func (h *Handler) weatherData(w http.ResponseWriter, r *http.Request, stationRef string) {
	q := router.ParseWeatherQuery(r)
	result := h.svc.WeatherDataList(r.Context(), stationRef, q.Granularity, q.StartTime, q.EndTime, q.Timezone, q.Fields)
	WriteResult(w, r.Method, result)
}
