// Package leadimport turns a CSV upload into leads.
//
// The first line is the header. Columns are picked by case-insensitive
// substring match on the header ("name", "email", "company", "phone"); the
// first matching column wins. Rows without an email are dropped and blank
// lines are skipped.
package leadimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sales-crm/internal/crm"
)

const MaxFileSize = 10 * 1024 * 1024 // 10MB

var (
	ErrEmptyFile    = errors.New("leadimport: file is empty")
	ErrNoValidLeads = errors.New("leadimport: no valid leads found")
	ErrTooLarge     = errors.New("leadimport: file too large")
	ErrInvalidCSV   = errors.New("leadimport: invalid CSV")
)

// Sink receives the parsed batch.
type Sink interface {
	AddLeads(leads []crm.Lead) []crm.Lead
}

// Columns records which header index feeds each lead field; -1 means absent.
type Columns struct {
	Name    int `json:"name"`
	Email   int `json:"email"`
	Company int `json:"company"`
	Phone   int `json:"phone"`
}

// Result summarises one import.
type Result struct {
	Leads   []crm.Lead `json:"leads"`
	Skipped int        `json:"skipped"`
	Columns Columns    `json:"columns"`
}

type Importer struct {
	log   *slog.Logger
	newID func() string
}

func New(l *slog.Logger) *Importer {
	if l == nil {
		l = slog.Default()
	}
	return &Importer{log: l, newID: uuid.NewString}
}

// Parse reads r and returns the leads it contains without storing them.
func (im *Importer) Parse(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("leadimport: read: %w", err)
	}
	if len(data) > MaxFileSize {
		return Result{}, ErrTooLarge
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	if len(strings.Split(text, "\n")) < 2 {
		return Result{}, ErrEmptyFile
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, ErrEmptyFile
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	cols := detectColumns(header)

	res := Result{Leads: []crm.Lead{}, Columns: cols}
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line, _ := cr.FieldPos(0)
		row := line - 1

		email := field(rec, cols.Email)
		if email == "" {
			res.Skipped++
			continue
		}
		name := field(rec, cols.Name)
		if name == "" {
			name = fmt.Sprintf("Lead %d", row)
		}
		res.Leads = append(res.Leads, crm.Lead{
			ID:      im.newID(),
			Name:    name,
			Email:   email,
			Company: field(rec, cols.Company),
			Phone:   field(rec, cols.Phone),
			Status:  crm.LeadStatusNew,
			Source:  crm.LeadSourceImport,
		})
	}

	if len(res.Leads) == 0 {
		return Result{}, ErrNoValidLeads
	}
	return res, nil
}

// Import parses r and hands the batch to sink in a single call.
func (im *Importer) Import(ctx context.Context, r io.Reader, sink Sink) (Result, error) {
	res, err := im.Parse(ctx, r)
	if err != nil {
		im.log.Warn("lead import rejected", "error", err)
		return Result{}, err
	}
	res.Leads = sink.AddLeads(res.Leads)
	im.log.Info("leads imported", "count", len(res.Leads), "skipped", res.Skipped)
	return res, nil
}

func detectColumns(header []string) Columns {
	find := func(needle string) int {
		for i, h := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), needle) {
				return i
			}
		}
		return -1
	}
	return Columns{
		Name:    find("name"),
		Email:   find("email"),
		Company: find("company"),
		Phone:   find("phone"),
	}
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
