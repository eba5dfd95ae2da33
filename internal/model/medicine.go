package model

import "time"

// LowStockThreshold is the current stock below which a medicine is flagged as running low.
const LowStockThreshold = 10

// Medicine is a catalog entry. CurrentStock is derived from the stock ledger and is never stored.
type Medicine struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	DosageForm   string    `json:"dosage_form"`
	Description  string    `json:"description"`
	CurrentStock int64     `json:"current_stock"`
	LowStock     bool      `json:"low_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MedicinePatch carries the fields of a partial medicine update. Nil means "leave unchanged".
type MedicinePatch struct {
	Name        *string `json:"name,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	DosageForm  *string `json:"dosage_form,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Apply copies the non-nil fields of p onto m.
func (p MedicinePatch) Apply(m *Medicine) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.DosageForm != nil {
		m.DosageForm = *p.DosageForm
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
}
