package download

import (
	"sync/atomic"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
)

// Progress counts the items and bytes a pipeline call has handled. A nil
// *Progress discards updates.
type Progress struct {
	finished atomic.Int64
	total    atomic.Int64
	bytes    atomic.Int64
}

func (p *Progress) AddTotal(n int) {
	if p != nil {
		p.total.Add(int64(n))
	}
}

func (p *Progress) Done() {
	if p != nil {
		p.finished.Add(1)
	}
}

func (p *Progress) AddBytes(n int64) {
	if p != nil {
		p.bytes.Add(n)
	}
}

// Snapshot returns the current counters
func (p *Progress) Snapshot() models.TaskProgress {
	if p == nil {
		return models.TaskProgress{}
	}
	return models.TaskProgress{
		Finished: p.finished.Load(),
		Total:    p.total.Load(),
		Bytes:    p.bytes.Load(),
	}
}
