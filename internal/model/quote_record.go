package model

import "time"

// QuoteRecord is the persisted form of a served best quote.
type QuoteRecord struct {
	Chain          string    `json:"chain"`
	TokenIn        string    `json:"token_in"`
	TokenOut       string    `json:"token_out"`
	SymbolIn       string    `json:"symbol_in"`
	SymbolOut      string    `json:"symbol_out"`
	AmountIn       string    `json:"amount_in"`
	AmountOut      string    `json:"amount_out"`
	Route          []string  `json:"route"`
	HopVersions    []string  `json:"hop_versions"`
	PriceImpactBps int64     `json:"price_impact_bps"`
	CandidateCount int       `json:"candidate_count"`
	QuotedAt       time.Time `json:"quoted_at"`
}

// NewQuoteRecord flattens a best quote for storage.
func NewQuoteRecord(q *PriceQuote, candidates int, at time.Time) QuoteRecord {
	route := make([]string, 0, len(q.Path))
	for _, token := range q.Path {
		route = append(route, token.Address)
	}
	hops := make([]string, 0, len(q.HopVersions))
	for _, hop := range q.HopVersions {
		hops = append(hops, string(hop))
	}
	return QuoteRecord{
		Chain:          q.Chain,
		TokenIn:        q.TokenIn().Address,
		TokenOut:       q.TokenOut().Address,
		SymbolIn:       q.TokenIn().Symbol,
		SymbolOut:      q.TokenOut().Symbol,
		AmountIn:       q.AmountIn.String(),
		AmountOut:      q.AmountOut.String(),
		Route:          route,
		HopVersions:    hops,
		PriceImpactBps: q.PriceImpactBps,
		CandidateCount: candidates,
		QuotedAt:       at.UTC(),
	}
}
