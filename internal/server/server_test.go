package server

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"aequiswap/internal/aggregate"
	"aequiswap/internal/chain"
	"aequiswap/internal/config"
	"aequiswap/internal/discovery"
	"aequiswap/internal/model"
	"aequiswap/internal/quote"
	"aequiswap/internal/store"
	"aequiswap/internal/swap"
	"aequiswap/internal/token"
)

func testServer() *Server {
	cfg := config.Config{
		Chains: []config.ChainConfig{{
			Key:           "sepolia",
			ChainID:       11155111,
			RPCURL:        "http://127.0.0.1:1",
			WrappedNative: "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14",
		}},
		SlippageDefaultBps: 50,
		SlippageMaxBps:     1000,
	}
	logger := zap.NewNop()
	service := aggregate.NewService(
		cfg,
		chain.NewPool(cfg.Chains, logger),
		token.NewResolver(5*time.Minute, logger),
		quote.NewEngine(discovery.NewDiscoverer(logger), cfg, logger),
		swap.NewBuilder(cfg, logger),
		store.Noop{},
		logger,
	)
	return New(service, logger)
}

func TestHealthz(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
}

func TestQuoteValidationMapsTo400(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	url := "/v1/quote?chain=sepolia&token_in=bad&token_out=0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238&amount_in=1000"
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "invalid_request" {
		t.Fatalf("code = %q", body["code"])
	}
}

func TestStatusForTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrap: %w", aggregate.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{fmt.Errorf("wrap: %w", token.ErrTokenNotFound), http.StatusNotFound, "token_not_found"},
		{fmt.Errorf("wrap: %w", quote.ErrNoRoute), http.StatusNotFound, "no_route"},
		{fmt.Errorf("wrap: %w", config.ErrChainNotConfigured), http.StatusInternalServerError, "chain_not_configured"},
		{fmt.Errorf("rpc timeout"), http.StatusBadGateway, "upstream_error"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("statusFor(%v) = (%d, %s), want (%d, %s)", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestQuoteDTOStringAmounts(t *testing.T) {
	amountIn, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	q := &model.PriceQuote{
		Chain:     "sepolia",
		AmountIn:  amountIn,
		AmountOut: big.NewInt(42),
		PriceQ18:  big.NewInt(1),
		Path: []model.TokenMetadata{
			{Address: "0x1", Symbol: "A", Decimals: 18},
			{Address: "0x2", Symbol: "B", Decimals: 6},
		},
		Sources:     []model.PriceSource{{DexID: "uniswap-v2", AmountIn: amountIn, AmountOut: big.NewInt(42)}},
		HopVersions: []model.HopVersion{model.HopV2},
		Offers: []*model.PriceQuote{{
			Chain:       "sepolia",
			AmountIn:    amountIn,
			AmountOut:   big.NewInt(41),
			HopVersions: []model.HopVersion{model.HopV3},
		}},
	}

	dto := quoteToDTO(q)
	if dto.AmountIn != "123456789012345678901234567890" {
		t.Fatalf("amounts must serialize as decimal strings, got %q", dto.AmountIn)
	}
	if dto.EstimatedGasCostWei != "" || dto.GasPriceWei != "" {
		t.Fatalf("absent gas fields must stay empty")
	}
	if len(dto.Offers) != 1 || dto.Offers[0].AmountOut != "41" {
		t.Fatalf("offers not mapped: %+v", dto.Offers)
	}
	if dto.Offers[0].Offers != nil {
		t.Fatalf("offers must not nest")
	}
}
