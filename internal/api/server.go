package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"lcm-pool/internal/events"
	"lcm-pool/internal/logger"
	"lcm-pool/internal/report"
	"lcm-pool/internal/worker"

	"golang.org/x/net/websocket"
)

const maxBodyBytes = 1 << 20

// Server はAPIサーバー
type Server struct {
	addr   string
	config worker.PoolConfig
	bus    *events.Bus

	mu    sync.RWMutex
	pool  *worker.Pool
	batch int

	wsMu      sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成し、最初のプールを起動する
func NewServer(addr string, config worker.PoolConfig) (*Server, error) {
	s := &Server{
		addr:      addr,
		config:    config,
		bus:       events.NewBusWithBuffer(1024),
		batch:     1,
		wsClients: make(map[*websocket.Conn]bool),
	}
	pool, err := s.newPool()
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

func (s *Server) newPool() (*worker.Pool, error) {
	pool := worker.NewPoolWithConfig(s.config)
	pool.SetEventBus(s.bus)
	if err := pool.Start(); err != nil {
		return nil, err
	}
	return pool, nil
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/numbers", s.handleNumbers)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/metrics", s.handleMetrics)

	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始する。ctx がキャンセルされるまでブロックする。
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// イベントを WebSocket クライアントに中継
	go s.relayEvents(ctx)

	logger.Info("api", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	err := s.server.ListenAndServe()
	s.Close()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close は現在のプールを停止し、イベントバスを閉じる
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil && s.pool.Running() {
		if _, err := s.pool.Shutdown(); err != nil {
			logger.Warn("api", "Pool shutdown failed: %v", err)
		}
	}
	s.bus.Close()
}

// NumbersRequest は数の投入リクエスト
type NumbersRequest struct {
	Numbers []uint64 `json:"numbers"`
}

// Rejection は拒否された数とその理由
type Rejection struct {
	Number uint64 `json:"number"`
	Reason string `json:"reason"`
}

// NumbersResponse は投入結果
type NumbersResponse struct {
	Batch    int         `json:"batch"`
	Accepted int         `json:"accepted"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

func (s *Server) handleNumbers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NumbersRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// RLock の間は Shutdown によるプール差し替えが起きない
	s.mu.RLock()
	resp := NumbersResponse{Batch: s.batch}
	for _, n := range req.Numbers {
		if err := s.pool.Submit(n); err != nil {
			switch {
			case errors.Is(err, worker.ErrOutOfRange), errors.Is(err, worker.ErrReservedZero):
				resp.Rejected = append(resp.Rejected, Rejection{Number: n, Reason: err.Error()})
				continue
			default:
				s.mu.RUnlock()
				logger.Error("api", "Submit failed: %v", err)
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		resp.Accepted++
	}
	s.mu.RUnlock()

	s.writeJSON(w, resp)
}

// ShutdownResponse はバッチのマージ結果
type ShutdownResponse struct {
	Batch int `json:"batch"`
	report.Document
	Workers  []worker.WorkerResult `json:"workers"`
	Duration string                `json:"duration"`
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	result, err := s.pool.Shutdown()
	if err != nil {
		s.mu.Unlock()
		logger.Error("api", "Shutdown failed: %v", err)
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	resp := ShutdownResponse{
		Batch:    s.batch,
		Document: report.NewDocument(result.Table),
		Workers:  result.Workers,
		Duration: result.Duration.String(),
	}

	// 次のバッチ用に新しいプールを起動
	pool, err := s.newPool()
	if err != nil {
		s.mu.Unlock()
		logger.Error("api", "Failed to start next pool: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.pool = pool
	s.batch++
	s.mu.Unlock()

	logger.Info("api", "Batch %d complete: LCM %s", resp.Batch, resp.LCM)
	s.writeJSON(w, resp)
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Running      bool              `json:"running"`
	Batch        int               `json:"batch"`
	Workers      int               `json:"workers"`
	Bound        uint64            `json:"bound"`
	QueueSize    int               `json:"queue_size"`
	WorkerStates map[string]string `json:"worker_states"`
	WSClients    int               `json:"ws_clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, s.status())
}

func (s *Server) status() StatusResponse {
	s.mu.RLock()
	pool, batch := s.pool, s.batch
	s.mu.RUnlock()

	resp := StatusResponse{
		Running:      pool.Running(),
		Batch:        batch,
		Workers:      pool.NumWorkers(),
		Bound:        pool.Bound(),
		QueueSize:    pool.QueueSize(),
		WorkerStates: make(map[string]string),
	}
	for id, state := range pool.WorkerStates() {
		resp.WorkerStates[id] = state.String()
	}

	s.wsMu.RLock()
	resp.WSClients = len(s.wsClients)
	s.wsMu.RUnlock()

	return resp
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	snap := s.pool.Metrics().Snapshot()
	s.mu.RUnlock()

	s.writeJSON(w, snap)
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.wsMu.Lock()
	s.wsClients[ws] = true
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.wsClients, ws)
		s.wsMu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data any) {
	s.wsMu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.wsMu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// relayEvents はプールのイベントを全クライアントに送る
func (s *Server) relayEvents(ctx context.Context) {
	ch := s.bus.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(ev)
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("api", "Failed to encode JSON: %v", err)
	}
}
