package webui

import (
	"AirlineSafety/src/processor"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
)

// airlineParam 航司名按加载时相同的方式规范化
func airlineParam(r *http.Request) string {
	name := chi.URLParam(r, "airline")
	if u, err := url.PathUnescape(name); err == nil {
		name = u
	}
	return processor.AirlineKey(name)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) (*processor.Report, bool) {
	rep, err := s.reports.Get(r.Context())
	if err != nil {
		s.respondError(w, r, "dataset", err)
		return nil, false
	}
	return rep, true
}

func (s *Server) peerFinder(rep *processor.Report) processor.PeerFinder {
	if s.peers != nil {
		return s.peers
	}
	return processor.MemoryPeers{Records: rep.Records}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.report(w, r)
	if !ok {
		return
	}
	s.respondData(w, map[string]int{"airlines": len(rep.Records)})
}

func (s *Server) handleAirlines(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Airlines())
	}
}

func (s *Server) handleEnriched(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Enriched)
	}
}

func (s *Server) handleLong(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Long)
	}
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Pivot)
	}
}

func (s *Server) handlePeriodMeans(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Means)
	}
}

func (s *Server) handlePeriodTotals(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.Totals)
	}
}

func (s *Server) handlePeriodChange(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.MeanChange)
	}
}

func (s *Server) handleRateChanges(w http.ResponseWriter, r *http.Request) {
	f, err := processor.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		s.respondError(w, r, "rate change", err)
		return
	}
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, rep.RateChanges[f])
	}
}

func (s *Server) handleRateChange(w http.ResponseWriter, r *http.Request) {
	f, err := processor.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		s.respondError(w, r, "rate change", err)
		return
	}
	rep, ok := s.report(w, r)
	if !ok {
		return
	}
	row, err := processor.FindRateChange(rep.RateChanges[f], airlineParam(r))
	if err != nil {
		s.respondError(w, r, "rate change", err)
		return
	}
	s.respondData(w, row)
}

func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.report(w, r)
	if !ok {
		return
	}
	peers, err := s.peerFinder(rep).Peers(r.Context(), airlineParam(r))
	if err != nil {
		s.respondError(w, r, "peers", err)
		return
	}
	s.respondData(w, peers)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	f, err := processor.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		s.respondError(w, r, "compare", err)
		return
	}
	rep, ok := s.report(w, r)
	if !ok {
		return
	}
	airline := airlineParam(r)
	peers, err := s.peerFinder(rep).Peers(r.Context(), airline)
	if err != nil {
		s.respondError(w, r, "compare", err)
		return
	}
	bars, err := rep.Comparison(f, airline, processor.PeerNames(peers))
	if err != nil {
		s.respondError(w, r, "compare", err)
		return
	}
	s.respondData(w, bars)
}

// Correlation 相关系数结果
type Correlation struct {
	Family      processor.Family `json:"family"`
	Correlation processor.Rate   `json:"correlation"`
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	f, err := processor.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		s.respondError(w, r, "correlation", err)
		return
	}
	if rep, ok := s.report(w, r); ok {
		s.respondData(w, Correlation{Family: f, Correlation: processor.Correlation(rep.Enriched, f)})
	}
}

// handleLogs 以分块方式持续推送日志
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	// 设置响应头
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")

	// 日志流不受服务器写超时限制
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	logChan := s.logger.Subscribe()
	defer s.logger.Unsubscribe(logChan)
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	for {
		select {
		case msg, ok := <-logChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintln(w, msg); err != nil {
				// 客户端断开
				return
			}
			_ = rc.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
