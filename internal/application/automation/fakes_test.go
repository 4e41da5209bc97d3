package automation_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba inyectados por los puertos de los runners.
// ──────────────────────────────────────────────────────────────────────────────

type promoCall struct {
	BatchID string
	Price   decimal.Decimal
}

// fakeBatchRepo doble de BatchRepository con respuestas y fallos configurables.
type fakeBatchRepo struct {
	expiring []*entity.MedicineBatch
	rotation []*entity.MedicineBatch
	queryErr error

	promoErr map[string]error // fallo de SetPromotion por batch id

	promoCalls   []promoCall
	expiringArgs []int
	rotationArgs [][2]int
}

func (f *fakeBatchRepo) GetExpiringBatches(_ context.Context, maxDays int) ([]*entity.MedicineBatch, error) {
	f.expiringArgs = append(f.expiringArgs, maxDays)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.expiring, nil
}

func (f *fakeBatchRepo) GetRotationNeededBatches(_ context.Context, minDays, maxDays int) ([]*entity.MedicineBatch, error) {
	f.rotationArgs = append(f.rotationArgs, [2]int{minDays, maxDays})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rotation, nil
}

func (f *fakeBatchRepo) SetPromotion(_ context.Context, batchID string, price decimal.Decimal) error {
	if err := f.promoErr[batchID]; err != nil {
		return err
	}
	f.promoCalls = append(f.promoCalls, promoCall{BatchID: batchID, Price: price})
	return nil
}

type taskCall struct {
	PharmacistID string
	Message      string
}

// fakeTaskChannel doble de PharmacistNotifier. sendErr permite fallar según el
// contenido del mensaje (ej. el lote del medio).
type fakeTaskChannel struct {
	sendErr func(message string) error
	calls   []taskCall
}

func (f *fakeTaskChannel) SendTask(_ context.Context, pharmacistID, message string) (*automation.TaskResult, error) {
	f.calls = append(f.calls, taskCall{PharmacistID: pharmacistID, Message: message})
	if f.sendErr != nil {
		if err := f.sendErr(message); err != nil {
			return nil, err
		}
	}
	return &automation.TaskResult{Success: true, MessageID: "msg-1"}, nil
}

// fakeMarketChannel doble de MarketPublisher.
type fakeMarketChannel struct {
	publishErr func(listing automation.ListingPayload) error
	listings   []automation.ListingPayload
}

func (f *fakeMarketChannel) PublishListing(_ context.Context, listing automation.ListingPayload) error {
	f.listings = append(f.listings, listing)
	if f.publishErr != nil {
		return f.publishErr(listing)
	}
	return nil
}

// newBatch lote de prueba que vence en daysFromNow días, con precio entero.
func newBatch(id, name string, daysFromNow int, price int64) *entity.MedicineBatch {
	return &entity.MedicineBatch{
		ID:           id,
		GTIN:         "0461234567890" + id,
		BatchID:      "L-" + id,
		MedicineName: name,
		Location:     "estante-A" + id,
		ExpiryDate:   time.Now().AddDate(0, 0, daysFromNow),
		StockCount:   10,
		CostPrice:    decimal.NewFromInt(price / 2),
		SellingPrice: decimal.NewFromInt(price),
	}
}

func testConfig() automation.Config {
	return automation.Config{
		PharmacyID:   "ph-001",
		PharmacistID: "pharmacist-9",
		Location:     time.Local,
		CallTimeout:  time.Second,
		RunDeadline:  time.Minute,
	}
}
