package history

import (
	"aarogya/app/config"
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/do"
)

const exchangesFile = "exchanges.jsonl"

// ExchangeRecord is one completed (or failed) triage exchange, kept for
// replay and session history. Result holds the raw terminal payload.
type ExchangeRecord struct {
	SessionID  string          `json:"session_id"`
	Message    string          `json:"message"`
	Language   string          `json:"language"`
	InputMode  string          `json:"input_mode,omitempty"`
	Severity   string          `json:"severity,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Symptoms   []string        `json:"symptoms,omitempty"`
	Emergency  bool            `json:"emergency,omitempty"`
	FastPath   bool            `json:"fast_path,omitempty"`
	Failed     bool            `json:"failed,omitempty"`
	LatencyMs  int64           `json:"latency_ms"`
	Result     json.RawMessage `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Service is an append-only JSONL store of exchange records. Writers
// are fire-and-forget from the orchestrator's point of view; readers
// scan the file.
type Service struct {
	cfg  *config.Config
	mu   sync.RWMutex
	path string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	path := filepath.Join(cfg.Data.Dir, exchangesFile)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchanges file: %w", err)
	}
	defer file.Close()

	return &Service{
		cfg:  cfg,
		path: path,
	}, nil
}

func (s *Service) AppendExchange(record ExchangeRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open exchanges file: %w", err)
	}
	defer file.Close()

	if _, err = file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write exchange record: %w", err)
	}

	return nil
}

// Session returns all records of one session in insertion order.
func (s *Service) Session(sessionID string) ([]ExchangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open exchanges file: %w", err)
	}
	defer file.Close()

	var records []ExchangeRecord

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record ExchangeRecord
		if err = json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse exchange line: %w", err)
		}

		if record.SessionID == sessionID {
			records = append(records, record)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading exchanges file: %w", err)
	}

	return records, nil
}
