package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
)

var _ automation.MarketPublisher = (*MarketChannelClient)(nil)

// MarketChannelClient implementa MarketPublisher contra el canal HTTP del
// marketplace público de DigiFarmacy.
type MarketChannelClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewMarketChannelClient construye el cliente del canal de marketplace.
func NewMarketChannelClient(baseURL, apiKey string) *MarketChannelClient {
	return &MarketChannelClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultChannelTimeout},
	}
}

type listingRequest struct {
	GTIN          string          `json:"gtin"`
	PharmacyID    string          `json:"pharmacy_id"`
	MedicineName  string          `json:"medicine_name"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	ExpiryDate    string          `json:"expiry_date"` // YYYY-MM-DD
}

type listingResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PublishListing publica el aviso promocional. Un status distinto de 2xx o
// success=false se reportan como error.
func (c *MarketChannelClient) PublishListing(ctx context.Context, listing automation.ListingPayload) error {
	body, err := json.Marshal(listingRequest{
		GTIN:          listing.GTIN,
		PharmacyID:    listing.PharmacyID,
		MedicineName:  listing.MedicineName,
		OriginalPrice: listing.OriginalPrice,
		SalePrice:     listing.SalePrice,
		ExpiryDate:    listing.ExpiryDate,
	})
	if err != nil {
		return fmt.Errorf("serializar publicación: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request de publicación: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publicar en marketplace: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("leer respuesta del marketplace: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("marketplace respondió %d: %s", resp.StatusCode, raw)
	}

	var out listingResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decodificar respuesta del marketplace: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("marketplace rechazó la publicación: %s", out.Error)
	}
	return nil
}
