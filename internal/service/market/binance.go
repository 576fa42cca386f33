package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/pkg/http"
	"CryptoHunter/pkg/logger"
	"CryptoHunter/pkg/util"
)

// BinanceSource fetches 24h ticker stats from the Binance REST API. Spot
// pairs are quoted against USDT, so a snapshot for BTC reads BTCUSDT.
type BinanceSource struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewBinanceSource creates a Binance REST snapshot source.
func NewBinanceSource(baseURL string, timeout time.Duration, log *logger.Logger) *BinanceSource {
	if baseURL == "" {
		baseURL = "https://api.binance.com/api/v3"
	}
	return &BinanceSource{
		baseURL: baseURL,
		client:  http.NewClient(http.WithTimeout(timeout)),
		log:     log,
	}
}

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// FetchSnapshots pulls one 24h ticker per symbol. Symbols that fail to
// resolve are skipped rather than failing the whole batch; market cap is not
// available on exchange tickers and stays zero for the aggregator to fill.
func (s *BinanceSource) FetchSnapshots(ctx context.Context, symbols []string) ([]models.CoinSnapshot, error) {
	out := make([]models.CoinSnapshot, 0, len(symbols))
	for _, sym := range symbols {
		sym = util.NormalizeSymbol(sym)

		var t binanceTicker
		err := s.client.SendAndParse(ctx, &http.RequestOptions{
			Method:      http.MethodGet,
			URL:         s.baseURL + "/ticker/24hr",
			QueryParams: map[string][]string{"symbol": {sym + "USDT"}},
		}, &t)
		if err != nil {
			s.log.Warn("binance ticker fetch failed",
				logger.String("symbol", sym),
				logger.Error(err))
			continue
		}

		price, err := strconv.ParseFloat(t.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}
		change, _ := strconv.ParseFloat(t.PriceChangePercent, 64)
		volume, _ := strconv.ParseFloat(t.QuoteVolume, 64)

		out = append(out, models.CoinSnapshot{
			Symbol:           sym,
			Name:             sym,
			Price:            price,
			PercentChange24h: change,
			Volume24h:        volume,
			Sources:          []string{"binance"},
			FetchedAt:        time.Now(),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("binance: no symbols resolved")
	}
	return out, nil
}
