package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

var csvHeader = []string{"timestamp", "user_id", "username", "operation", "from_amount", "to_amount", "commission"}

// CSVLog is the append-only flat export sink. The header row is written
// exactly once, only when the file does not yet exist.
type CSVLog struct {
	mu   sync.Mutex
	path string
}

// NewCSVLog creates a CSV log writing to path. The file itself is
// created lazily on the first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Append writes one transaction row.
func (l *CSVLog) Append(tx *domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	writeHeader := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}

	w := csv.NewWriter(f)
	if writeHeader {
		w.Write(csvHeader)
	}
	w.Write([]string{
		tx.Timestamp.Format(time.RFC3339),
		strconv.FormatInt(tx.UserID, 10),
		tx.Username,
		tx.Operation,
		tx.FromAmount.String(),
		tx.ToAmount.String(),
		tx.Commission.String(),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write export row: %w", err)
	}
	return f.Close()
}
