package webui

import (
	"AirlineSafety/src/datasource"
	"AirlineSafety/src/metrics"
	"AirlineSafety/src/processor"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
)

// Response 统一的响应外壳
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Zero().Error().Err(err).Msg("JSON编码失败")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Zero().Debug().Err(err).Msg("写入响应失败")
	}
}

func (s *Server) respondData(w http.ResponseWriter, data any) {
	s.respondJSON(w, http.StatusOK, &Response{Status: "ok", Data: data})
}

// respondError 按错误类型映射状态码
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, processor.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
		metrics.LookupNotFound.WithLabelValues(op).Inc()
	case errors.Is(err, processor.ErrUnknownFamily), errors.Is(err, processor.ErrUnknownPeriod):
		status, code = http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, datasource.ErrDataAccess):
		status, code = http.StatusServiceUnavailable, "DATA_UNAVAILABLE"
	}

	ev := s.logger.Zero().Warn()
	if status >= http.StatusInternalServerError {
		ev = s.logger.Zero().Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg(op)

	s.respondJSON(w, status, &Response{
		Status: "error",
		Error:  &APIError{Code: code, Message: err.Error()},
	})
}
