// Package report renders read-only views over a snapshot of ledger data.
//
// Every report kind implements Generator. New kinds are added as new
// types; existing ones never change to accommodate them.
package report

import (
	"strings"

	"ledger/internal/core"
)

// Generator produces a textual report.
type Generator interface {
	Generate() string
}

// Option configures how a report renders amounts.
type Option func(*options)

type options struct {
	currency string
}

// WithCurrency prefixes every rendered amount with symbol.
func WithCurrency(symbol string) Option {
	return func(o *options) {
		o.currency = symbol
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) money(v float64) string {
	return o.currency + core.FormatAmount(v)
}

const ruleWidth = 40

func writeHeader(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteByte('\n')
}
