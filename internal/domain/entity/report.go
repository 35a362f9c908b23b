package entity

import "strings"

// SymbolMap maps a token address to its display symbol.
type SymbolMap map[string]string

// DisplaySymbol returns the resolved symbol for token, or the token address itself
// when the resolver could not produce one.
func (m SymbolMap) DisplaySymbol(token string) string {
	if s, ok := m[token]; ok && s != "" {
		return s
	}
	return token
}

// ReportColumn is one token column of the report: a display label and the
// tokens, in configured order, that share it.
type ReportColumn struct {
	Label  string   `json:"label"`
	Tokens []string `json:"tokens"`
}

// ColumnLabels returns the labels of columns in order.
func ColumnLabels(columns []ReportColumn) []string {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.Label
	}
	return labels
}

// BalanceSnapshot is the joined output of a run, ready for export.
type BalanceSnapshot struct {
	Records   []WalletRecord `json:"records"`
	Symbols   []string       `json:"symbols"`
	Columns   []ReportColumn `json:"columns"`
	SymbolMap SymbolMap      `json:"symbolMap"`
	Failures  []ReadFailure  `json:"failures,omitempty"`
}

// Report is a rendered balance table.
type Report struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Text renders the report: header cells separated by ",", data cells by ", ".
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString(strings.Join(r.Header, ","))
	b.WriteByte('\n')
	for _, row := range r.Rows {
		b.WriteString(strings.Join(row, ", "))
		b.WriteByte('\n')
	}
	return b.String()
}
