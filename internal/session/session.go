package session

import (
	"time"

	"github.com/google/uuid"

	"ngsrerun/domain/report"
	"ngsrerun/domain/stage"
	"ngsrerun/internal/qc"
	"ngsrerun/internal/validation"
)

// Session is the complete state of one review session: the parsed
// report, its companion metadata and the user's current selection.
// The selection is explicit state handed to the transformer on every
// invocation; nothing here is consulted implicitly.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReportFile string `json:"report_file"`
	Stage3File string `json:"stage3_file,omitempty"`

	Rows     []report.ResultRow `json:"rows"`
	Metadata stage.Metadata     `json:"metadata,omitempty"`

	Issues   []validation.Issue `json:"issues,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Summary  qc.Summary         `json:"summary"`

	// Selection is ordered: position in the slice is packing order on
	// the rerun plate.
	Selection []int `json:"selection"`

	PlateBarcode string `json:"plate_barcode"`
}

// New creates an empty session with a fresh ID.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Selected reports whether a report row index is in the selection.
func (s *Session) Selected(idx int) bool {
	for _, v := range s.Selection {
		if v == idx {
			return true
		}
	}
	return false
}

// Toggle flips a row in or out of the selection. Newly included rows
// go to the end, so toggling also expresses packing order.
func (s *Session) Toggle(idx int) {
	for i, v := range s.Selection {
		if v == idx {
			s.Selection = append(s.Selection[:i], s.Selection[i+1:]...)
			s.touch()
			return
		}
	}
	s.Selection = append(s.Selection, idx)
	s.touch()
}

// SetSelection replaces the selection wholesale.
func (s *Session) SetSelection(sel []int) {
	s.Selection = append([]int(nil), sel...)
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
