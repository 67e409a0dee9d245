package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"querydraft/models"
)

const (
	sqlFilePrefix  = "sql_file:"
	chatPrefix     = "chat:"
	feedbackPrefix = "feedback:"
)

type DB struct {
	badgerDB *badger.DB
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging for cleaner output

	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{badgerDB: badgerDB}, nil
}

// NewInMemory opens a database that lives only as long as the process.
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

func (d *DB) StoreSQLFile(name string, content string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		key := []byte(sqlFilePrefix + name)
		return txn.Set(key, []byte(content))
	})
}

func (d *DB) GetSQLFiles() ([]models.SQLFile, error) {
	var sqlFiles []models.SQLFile

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sqlFilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), sqlFilePrefix)

			err := item.Value(func(val []byte) error {
				sqlFiles = append(sqlFiles, models.SQLFile{
					Name:    name,
					Content: string(val),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return sqlFiles, err
}

func (d *DB) LoadSQLFilesFromDir(sqlFilesDir string) ([]models.SQLFile, error) {
	var sqlFiles []models.SQLFile

	// Create directory if it doesn't exist
	if err := os.MkdirAll(sqlFilesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create SQL files directory: %w", err)
	}

	err := filepath.Walk(sqlFilesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".sql") {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			sqlFiles = append(sqlFiles, models.SQLFile{
				Name:    info.Name(),
				Content: string(content),
			})
		}
		return nil
	})

	return sqlFiles, err
}

// ImportSQLDir loads every .sql file under dir into the store and returns
// how many were stored.
func (d *DB) ImportSQLDir(dir string) (int, error) {
	files, err := d.LoadSQLFilesFromDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to load SQL files: %w", err)
	}
	for _, f := range files {
		if err := d.StoreSQLFile(f.Name, f.Content); err != nil {
			return 0, fmt.Errorf("failed to store SQL file %s: %w", f.Name, err)
		}
	}
	return len(files), nil
}

func (d *DB) StoreChatHistory(sessionID string, message string, response string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		now := time.Now()
		// Zero-padded nanoseconds keep keys in chronological order.
		key := []byte(fmt.Sprintf("%s%s:%020d", chatPrefix, sessionID, now.UnixNano()))

		history := models.ChatHistory{
			SessionID: sessionID,
			Message:   message,
			Response:  response,
			Timestamp: now.UTC().Format(time.RFC3339Nano),
		}

		data, err := json.Marshal(history)
		if err != nil {
			return err
		}

		return txn.Set(key, data)
	})
}

// GetChatHistory returns the stored exchanges of a session, oldest first.
func (d *DB) GetChatHistory(sessionID string) ([]models.ChatHistory, error) {
	history := []models.ChatHistory{}
	prefix := []byte(chatPrefix + sessionID + ":")

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var h models.ChatHistory
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &h)
			})
			if err != nil {
				return fmt.Errorf("failed to decode chat history: %w", err)
			}
			history = append(history, h)
		}
		return nil
	})

	return history, err
}

// Report stores a user-flagged query. It satisfies the session feedback sink.
func (d *DB) Report(ctx context.Context, report models.FeedbackReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	key := []byte(fmt.Sprintf("%s%020d:%s", feedbackPrefix, report.ReportedAt.UnixNano(), report.ID))
	if err := d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}
	return nil
}

// ListFeedback returns stored reports, oldest first. An empty sessionID
// returns all of them.
func (d *DB) ListFeedback(sessionID string) ([]models.FeedbackReport, error) {
	reports := []models.FeedbackReport{}

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var r models.FeedbackReport
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("failed to decode feedback: %w", err)
			}
			if sessionID == "" || r.SessionID == sessionID {
				reports = append(reports, r)
			}
		}
		return nil
	})

	return reports, err
}
