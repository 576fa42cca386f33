package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/http"
	"CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/util"
)

// coinIDs maps ticker symbols to CoinGecko coin ids. Symbols outside the map
// fall back to their lowercase form, which works for most long-tail listings.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"PEPE":  "pepe",
	"BONK":  "bonk",
	"NOT":   "notcoin",
}

// CoinGeckoSource fetches prices, 24h change, volume and market cap from the
// CoinGecko simple price API in a single batched request.
type CoinGeckoSource struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewCoinGeckoSource creates a CoinGecko snapshot source.
func NewCoinGeckoSource(baseURL string, timeout time.Duration, log *logger.Logger) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &CoinGeckoSource{
		baseURL: baseURL,
		client:  http.NewClient(http.WithTimeout(timeout)),
		log:     log,
	}
}

type geckoQuote struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// FetchSnapshots resolves symbols to coin ids and pulls one batched quote.
func (s *CoinGeckoSource) FetchSnapshots(ctx context.Context, symbols []string) ([]models.CoinSnapshot, error) {
	ids := make([]string, 0, len(symbols))
	idToSymbol := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		sym = util.NormalizeSymbol(sym)
		id, ok := coinIDs[sym]
		if !ok {
			id = strings.ToLower(sym)
		}
		ids = append(ids, id)
		idToSymbol[id] = sym
	}

	quotes := make(map[string]geckoQuote)
	err := s.client.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    s.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":                 {strings.Join(ids, ",")},
			"vs_currencies":       {"usd"},
			"include_24hr_change": {"true"},
			"include_24hr_vol":    {"true"},
			"include_market_cap":  {"true"},
		},
	}, &quotes)
	if err != nil {
		return nil, fmt.Errorf("coingecko simple price: %w", err)
	}

	out := make([]models.CoinSnapshot, 0, len(quotes))
	for id, q := range quotes {
		sym, ok := idToSymbol[id]
		if !ok || q.USD <= 0 {
			continue
		}
		out = append(out, models.CoinSnapshot{
			Symbol:           sym,
			Name:             id,
			Price:            q.USD,
			PercentChange24h: q.USD24hChange,
			Volume24h:        q.USD24hVol,
			MarketCap:        q.USDMarketCap,
			Sources:          []string{"coingecko"},
			FetchedAt:        time.Now(),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("coingecko: no symbols resolved")
	}

	s.log.Debug("coingecko batch fetched", logger.Int("count", len(out)))
	return out, nil
}
