package automation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/automation"
	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
	"github.com/fixmation/DigiFarmacy-sub001/internal/domain/entity"
	"github.com/fixmation/DigiFarmacy-sub001/pkg/logger"
)

func newRotationRunner(repo *fakeBatchRepo, tasks *fakeTaskChannel) *automation.StockRotationRunner {
	return automation.NewStockRotationRunner(repo, tasks, testConfig(), logger.Nop())
}

func TestRotacion_ConsultaVentanaCorrecta(t *testing.T) {
	repo := &fakeBatchRepo{}
	runner := newRotationRunner(repo, &fakeTaskChannel{})

	runner.Run(context.Background())

	require.Len(t, repo.rotationArgs, 1)
	assert.Equal(t, [2]int{61, 90}, repo.rotationArgs[0],
		"la rotación debe consultar la ventana [61,90]")
}

func TestRotacion_SinCandidatos(t *testing.T) {
	repo := &fakeBatchRepo{}
	tasks := &fakeTaskChannel{}
	runner := newRotationRunner(repo, tasks)

	report := runner.Run(context.Background())

	assert.Equal(t, dto.RunOutcomeOK, report.Outcome, "sin candidatos no es un error")
	assert.Empty(t, tasks.calls)
}

// En la ventana de rotación no hay mutación de precio: solo instrucciones
// FEFO al farmacéutico con lote, vencimiento y ubicación.
func TestRotacion_NoMutaPreciosYNotificaFEFO(t *testing.T) {
	batch := newBatch("r1", "Omeprazol 20mg", 75, 600)
	repo := &fakeBatchRepo{rotation: []*entity.MedicineBatch{batch}}
	tasks := &fakeTaskChannel{}
	runner := newRotationRunner(repo, tasks)

	report := runner.Run(context.Background())

	assert.Equal(t, dto.RunOutcomeOK, report.Outcome)
	assert.Equal(t, 1, report.Processed)
	assert.Empty(t, repo.promoCalls, "la rotación nunca debe tocar precios")

	require.Len(t, tasks.calls, 1)
	msg := tasks.calls[0].Message
	assert.Equal(t, "pharmacist-9", tasks.calls[0].PharmacistID)
	assert.Contains(t, msg, batch.BatchID, "la instrucción debe identificar el lote")
	assert.Contains(t, msg, batch.Location, "la instrucción debe incluir la estantería")
	assert.Contains(t, msg, batch.ExpiryDate.Format("2006-01-02"),
		"la instrucción debe incluir la fecha de vencimiento")
}

// Un canal caído para un lote no bloquea las instrucciones de los demás.
func TestRotacion_FalloDeCanalNoBloqueaLotesSiguientes(t *testing.T) {
	repo := &fakeBatchRepo{rotation: []*entity.MedicineBatch{
		newBatch("r1", "Omeprazol 20mg", 65, 600),
		newBatch("r2", "Loratadina 10mg", 70, 300),
		newBatch("r3", "Metformina 850mg", 85, 450),
	}}
	tasks := &fakeTaskChannel{sendErr: func(message string) error {
		if strings.Contains(message, "Loratadina") {
			return errors.New("canal caído")
		}
		return nil
	}}
	runner := newRotationRunner(repo, tasks)

	report := runner.Run(context.Background())

	assert.Equal(t, dto.RunOutcomeOK, report.Outcome)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.NotifyFailures)
	assert.Len(t, tasks.calls, 3, "las tres instrucciones deben intentarse")
}

// La ventana se re-verifica con el reloj del proceso: un lote fuera de
// [61,90] devuelto por el store no genera instrucción de rotación.
func TestRotacion_LoteFueraDeVentanaSeOmite(t *testing.T) {
	repo := &fakeBatchRepo{rotation: []*entity.MedicineBatch{
		newBatch("r1", "Omeprazol 20mg", 30, 600), // ventana de venta flash
		newBatch("r2", "Loratadina 10mg", 70, 300),
	}}
	tasks := &fakeTaskChannel{}
	runner := newRotationRunner(repo, tasks)

	report := runner.Run(context.Background())

	assert.Equal(t, dto.RunOutcomeOK, report.Outcome)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, tasks.calls, 1)
	assert.Contains(t, tasks.calls[0].Message, "L-r2",
		"solo el lote dentro de [61,90] recibe instrucción")
}

func TestRotacion_FalloDeConsultaAbortaCorrida(t *testing.T) {
	repo := &fakeBatchRepo{queryErr: errors.New("store caído")}
	tasks := &fakeTaskChannel{}
	runner := newRotationRunner(repo, tasks)

	report := runner.Run(context.Background())

	assert.Equal(t, dto.RunOutcomeError, report.Outcome)
	assert.Contains(t, report.Error, "store caído")
	assert.Empty(t, tasks.calls)
}
