package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medstock/internal/model"
	"medstock/internal/repository"
	"medstock/internal/search"
)

// MedicineInput is the payload for creating a medicine.
type MedicineInput struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	DosageForm  string `json:"dosage_form"`
	Description string `json:"description"`
}

// MedicineService manages the medicine catalog.
type MedicineService interface {
	// List returns all medicines with their current stock. A non-empty query
	// keeps those whose name, unit or dosage form contains it, ignoring case.
	List(ctx context.Context, query string) ([]model.Medicine, error)
	Get(ctx context.Context, id string) (*model.Medicine, error)
	Create(ctx context.Context, in MedicineInput) (*model.Medicine, error)
	// Update applies a partial update. Fields present in the patch must not be blank.
	Update(ctx context.Context, id string, patch model.MedicinePatch) (*model.Medicine, error)
	Delete(ctx context.Context, id string) error
}

type medicineService struct {
	repo repository.MedicineRepository
	now  func() time.Time
}

// NewMedicineService constructs a MedicineService.
func NewMedicineService(repo repository.MedicineRepository) MedicineService {
	return &medicineService{repo: repo, now: time.Now}
}

func (s *medicineService) List(ctx context.Context, query string) ([]model.Medicine, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return items, nil
	}
	out := make([]model.Medicine, 0, len(items))
	for _, m := range items {
		if search.Match(query, m.Name, m.Unit, m.DosageForm) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *medicineService) Get(ctx context.Context, id string) (*model.Medicine, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *medicineService) Create(ctx context.Context, in MedicineInput) (*model.Medicine, error) {
	m := &model.Medicine{
		Name:        strings.TrimSpace(in.Name),
		Unit:        strings.TrimSpace(in.Unit),
		DosageForm:  strings.TrimSpace(in.DosageForm),
		Description: strings.TrimSpace(in.Description),
	}
	if err := validateMedicine(m); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now

	out, err := s.repo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDuplicateMedicine
		}
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	return out, nil
}

func (s *medicineService) Update(ctx context.Context, id string, patch model.MedicinePatch) (*model.Medicine, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	trim(patch.Name)
	trim(patch.Unit)
	trim(patch.DosageForm)
	trim(patch.Description)
	patch.Apply(m)
	if err := validateMedicine(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now().UTC()

	out, err := s.repo.Update(ctx, m)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMedicineNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrDuplicateMedicine
		}
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return out, nil
}

func (s *medicineService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrMedicineNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrMedicineInUse
	}
	return fmt.Errorf("delete medicine: %w", err)
}

func validateMedicine(m *model.Medicine) error {
	switch {
	case m.Name == "":
		return invalid("name", "is required")
	case m.Unit == "":
		return invalid("unit", "is required")
	case m.DosageForm == "":
		return invalid("dosage_form", "is required")
	case len(m.Name) > 255:
		return invalid("name", "must be at most 255 characters")
	}
	return nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
