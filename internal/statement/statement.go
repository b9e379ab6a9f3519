// Package statement turns bank statement exports into transactions.
package statement

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownBank         = errors.New("unknown bank")
)

// Provider parses the statement format of one bank. Rows that cannot be
// parsed are logged and skipped; only an unreadable document is an error.
type Provider interface {
	Name() string
	Extensions() []string
	Parse(r io.Reader) ([]model.Transaction, error)
}

type Registry struct {
	providers []Provider
	logger    *zap.Logger
}

func NewRegistry(logger *zap.Logger, providers ...Provider) *Registry {
	return &Registry{
		providers: providers,
		logger:    logger,
	}
}

// DefaultRegistry knows every supported bank.
func DefaultRegistry(logger *zap.Logger) *Registry {
	return NewRegistry(logger, NewRevolut(logger), NewSwedbank(logger))
}

// Bank describes a supported bank and the statement files it exports.
type Bank struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// Banks lists supported banks in registration order.
func (r *Registry) Banks() []Bank {
	banks := make([]Bank, 0, len(r.providers))
	for _, p := range r.providers {
		banks = append(banks, Bank{Name: p.Name(), Extensions: p.Extensions()})
	}
	return banks
}

func (r *Registry) Provider(bank string) (Provider, error) {
	for _, p := range r.providers {
		if strings.EqualFold(p.Name(), bank) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBank, bank)
}

// Parse picks the bank's provider and checks the file extension before
// reading the document.
func (r *Registry) Parse(bank, filename string, document io.Reader) ([]model.Transaction, error) {
	provider, err := r.Provider(bank)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(provider.Extensions(), ext) {
		return nil, fmt.Errorf("%w: %s doesn't support %q files", ErrUnsupportedFileType, provider.Name(), ext)
	}

	transactions, err := provider.Parse(document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s statement: %w", provider.Name(), err)
	}

	r.logger.Info("statement parsed",
		zap.String("bank", provider.Name()),
		zap.String("file", filename),
		zap.Int("transactions", len(transactions)))

	return transactions, nil
}
