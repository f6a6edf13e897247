package memory

import (
	"context"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// DefaultPharmacies — демонстрационный справочник аптек самовывоза.
var DefaultPharmacies = []domain.Pharmacy{
	{
		ID:       "ph-1",
		Name:     "Green Leaf Pharmacy",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		Phone:    "+91 80 4000 1201",
		Verified: true,
		Location: domain.Location{Lat: 12.9756, Lng: 77.6050},
	},
	{
		ID:       "ph-2",
		Name:     "CareWell Chemists",
		Address:  "45 Park Street",
		City:     "Kolkata",
		Phone:    "+91 33 4000 4502",
		Verified: true,
		Location: domain.Location{Lat: 22.5535, Lng: 88.3520},
	},
	{
		ID:       "ph-3",
		Name:     "Campus Health Store",
		Address:  "University Road 3",
		City:     "Pune",
		Phone:    "+91 20 4000 0303",
		Verified: false,
		Location: domain.Location{Lat: 18.5520, Lng: 73.8250},
	},
}

// pharmacyDirectoryInMemory — неизменяемый справочник аптек.
type pharmacyDirectoryInMemory struct {
	pharmacies []domain.Pharmacy
}

// NewPharmacyDirectory создаёт справочник; пустой список заменяется DefaultPharmacies.
func NewPharmacyDirectory(pharmacies []domain.Pharmacy) domain.PharmacyDirectory {
	if len(pharmacies) == 0 {
		pharmacies = DefaultPharmacies
	}
	return &pharmacyDirectoryInMemory{pharmacies: append([]domain.Pharmacy(nil), pharmacies...)}
}

func (d *pharmacyDirectoryInMemory) List(context.Context) ([]domain.Pharmacy, error) {
	return append([]domain.Pharmacy(nil), d.pharmacies...), nil
}

func (d *pharmacyDirectoryInMemory) Get(_ context.Context, id string) (domain.Pharmacy, error) {
	for _, p := range d.pharmacies {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Pharmacy{}, domain.ErrPharmacyNotFound
}

var _ domain.PharmacyDirectory = (*pharmacyDirectoryInMemory)(nil)
