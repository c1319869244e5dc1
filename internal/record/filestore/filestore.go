package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/orgball2608/insta-daily-poster/internal/record"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
	"github.com/orgball2608/insta-daily-poster/pkg/logger"
)

const fileName = "posted.json"

type document struct {
	Date   string   `json:"date"`
	Posted []string `json:"posted"`
}

// Store keeps one JSON file per day under root: <root>/<date>/posted.json.
// Writes rewrite the whole file; callers must not run two stores on the same root at once.
type Store struct {
	root   string
	logger logger.Logger
}

var _ record.Repository = (*Store)(nil)

func New(root string, log logger.Logger) *Store {
	return &Store{
		root:   root,
		logger: log.WithComponent("FileRecordStore"),
	}
}

func (s *Store) path(date string) string {
	return filepath.Join(s.root, date, fileName)
}

func (s *Store) Load(_ context.Context, date string) (map[string]struct{}, error) {
	doc, err := s.read(date)
	if err != nil {
		return nil, err
	}

	posted := make(map[string]struct{}, len(doc.Posted))
	for _, f := range doc.Posted {
		posted[f] = struct{}{}
	}
	return posted, nil
}

func (s *Store) Append(ctx context.Context, date string, filename string) error {
	posted, err := s.Load(ctx, date)
	if err != nil {
		return err
	}
	if _, ok := posted[filename]; ok {
		return nil
	}
	posted[filename] = struct{}{}

	list := make([]string, 0, len(posted))
	for f := range posted {
		list = append(list, f)
	}
	sort.Strings(list)

	if err := s.write(document{Date: date, Posted: list}); err != nil {
		return err
	}

	s.logger.Debug("Record updated", "date", date, "filename", filename, "total", len(list))
	return nil
}

// read returns the record for date, creating an empty one on first touch.
func (s *Store) read(date string) (document, error) {
	data, err := os.ReadFile(s.path(date))
	if os.IsNotExist(err) {
		doc := document{Date: date, Posted: []string{}}
		if err := s.write(doc); err != nil {
			return document{}, err
		}
		s.logger.Debug("Created empty record", "date", date)
		return doc, nil
	}
	if err != nil {
		return document{}, errors.WrapWithCode(errors.ErrStorage, "record_read", fmt.Sprintf("read %s: %v", s.path(date), err))
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, errors.WrapWithCode(errors.ErrStorage, "record_decode", fmt.Sprintf("decode %s: %v", s.path(date), err))
	}
	return doc, nil
}

// write replaces the day's file through a temp file and rename so a crash never leaves half a record.
func (s *Store) write(doc document) error {
	dir := filepath.Dir(s.path(doc.Date))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(errors.ErrStorage, "record_write", fmt.Sprintf("create %s: %v", dir, err))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*.tmp")
	if err != nil {
		return errors.WrapWithCode(errors.ErrStorage, "record_write", fmt.Sprintf("temp file in %s: %v", dir, err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.WrapWithCode(errors.ErrStorage, "record_write", err.Error())
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(errors.ErrStorage, "record_write", err.Error())
	}
	if err := os.Rename(tmp.Name(), s.path(doc.Date)); err != nil {
		return errors.WrapWithCode(errors.ErrStorage, "record_write", err.Error())
	}
	return nil
}
