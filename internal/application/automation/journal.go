package automation

import (
	"sync"

	"github.com/fixmation/DigiFarmacy-sub001/internal/application/dto"
)

// Journal guarda en memoria el último reporte de corrida por regla.
// Lo escriben el scheduler y los disparos manuales; lo lee el endpoint de
// estado. Protegido con RWMutex porque ambos runners pueden terminar
// concurrentemente.
type Journal struct {
	mu   sync.RWMutex
	last map[string]*dto.RunReportDTO
}

// NewJournal construye un journal vacío.
func NewJournal() *Journal {
	return &Journal{last: make(map[string]*dto.RunReportDTO)}
}

// Record registra el reporte como el último de su regla.
func (j *Journal) Record(report *dto.RunReportDTO) {
	if report == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.last[report.Rule] = report
}

// Last devuelve el último reporte de una regla, o nil si aún no corrió.
func (j *Journal) Last(rule string) *dto.RunReportDTO {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last[rule]
}

// Snapshot devuelve una copia del último reporte de cada regla.
func (j *Journal) Snapshot() map[string]*dto.RunReportDTO {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make(map[string]*dto.RunReportDTO, len(j.last))
	for rule, report := range j.last {
		out[rule] = report
	}
	return out
}
