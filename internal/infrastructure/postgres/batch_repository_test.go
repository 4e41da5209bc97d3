package postgres_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmation/DigiFarmacy-sub001/internal/infrastructure/postgres"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba del Querier
// ──────────────────────────────────────────────────────────────────────────────

type capturedCall struct {
	sql  string
	args []any
}

// stubQuerier captura cada llamada y devuelve conjuntos vacíos.
type stubQuerier struct {
	queries []capturedCall
	execs   []capturedCall
}

func (s *stubQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, capturedCall{sql: sql, args: args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (s *stubQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.queries = append(s.queries, capturedCall{sql: sql, args: args})
	return emptyRows{}, nil
}

func (s *stubQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

// emptyRows pgx.Rows sin filas.
type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(_ ...any) error                          { return nil }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Contrato de clasificación: solo lectura, idempotente, orden FEFO
// ──────────────────────────────────────────────────────────────────────────────

// Llamadas repetidas con los mismos parámetros emiten exactamente el mismo SQL
// con los mismos argumentos y nunca ejecutan una mutación: para un mismo día
// calendario el conjunto clasificado depende solo del estado del store.
func TestClasificacion_ConsultasIdempotentes(t *testing.T) {
	q := &stubQuerier{}
	repo := postgres.NewBatchRepository(q)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.GetExpiringBatches(ctx, 60)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := repo.GetRotationNeededBatches(ctx, 61, 90)
		require.NoError(t, err)
	}

	require.Len(t, q.queries, 6)
	assert.Empty(t, q.execs, "clasificar no debe ejecutar mutaciones")

	for _, call := range q.queries[:3] {
		assert.Equal(t, q.queries[0].sql, call.sql, "el SQL debe ser idéntico en cada llamada")
		assert.Equal(t, []any{60}, call.args)
	}
	for _, call := range q.queries[3:] {
		assert.Equal(t, q.queries[3].sql, call.sql, "el SQL debe ser idéntico en cada llamada")
		assert.Equal(t, []any{61, 90}, call.args)
	}
}

// Ambas consultas de clasificación son SELECT puros y piden el orden FEFO al
// store (vencimiento ascendente); los runners no reordenan.
func TestClasificacion_SelectPuroConOrdenFEFO(t *testing.T) {
	q := &stubQuerier{}
	repo := postgres.NewBatchRepository(q)

	_, err := repo.GetExpiringBatches(context.Background(), 60)
	require.NoError(t, err)
	_, err = repo.GetRotationNeededBatches(context.Background(), 61, 90)
	require.NoError(t, err)

	require.Len(t, q.queries, 2)
	for _, call := range q.queries {
		stmt := strings.TrimSpace(call.sql)
		assert.True(t, strings.HasPrefix(stmt, "SELECT"),
			"la clasificación debe ser de solo lectura, emitió: %s", stmt)
		assert.Contains(t, stmt, "ORDER BY expiry_date ASC",
			"el orden FEFO debe venir del store")
	}
}

func TestSetPromotion_EmiteUnaSolaMutacion(t *testing.T) {
	q := &stubQuerier{}
	repo := postgres.NewBatchRepository(q)

	err := repo.SetPromotion(context.Background(), "b1", decimal.NewFromInt(850))
	require.NoError(t, err)

	require.Len(t, q.execs, 1)
	assert.Empty(t, q.queries)
	assert.Contains(t, q.execs[0].sql, "UPDATE medicine_batches")

	require.Len(t, q.execs[0].args, 2)
	assert.Equal(t, "b1", q.execs[0].args[0])
	price, ok := q.execs[0].args[1].(decimal.Decimal)
	require.True(t, ok, "el precio debe viajar como decimal.Decimal")
	assert.True(t, price.Equal(decimal.NewFromInt(850)))
}
