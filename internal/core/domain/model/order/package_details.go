package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// SizeClass is a coarse parcel size.
type SizeClass string

const (
	SizeSmall      SizeClass = "small"
	SizeMedium     SizeClass = "medium"
	SizeLarge      SizeClass = "large"
	SizeExtraLarge SizeClass = "extra_large"
)

// VehicleClass is the minimum vehicle a parcel needs. Empty means any.
type VehicleClass string

const (
	VehicleAny        VehicleClass = ""
	VehicleBicycle    VehicleClass = "bicycle"
	VehicleMotorcycle VehicleClass = "motorcycle"
	VehicleCar        VehicleClass = "car"
	VehicleVan        VehicleClass = "van"
	VehicleTruck      VehicleClass = "truck"
)

var vehicleRank = map[VehicleClass]int{
	VehicleAny:        0,
	VehicleBicycle:    1,
	VehicleMotorcycle: 2,
	VehicleCar:        3,
	VehicleVan:        4,
	VehicleTruck:      5,
}

// ParseVehicle normalizes and validates a vehicle class name.
func ParseVehicle(raw string) (VehicleClass, error) {
	v := VehicleClass(strings.ToLower(strings.TrimSpace(raw)))
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v VehicleClass) Validate() error {
	if _, ok := vehicleRank[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%q is not a valid vehicle", string(v)))
	}
	return nil
}

// Satisfies reports whether v is at least as large as required.
func (v VehicleClass) Satisfies(required VehicleClass) bool {
	return vehicleRank[v] >= vehicleRank[required]
}

const maxWeightKg = 2000.0

// PackageDetails describes what is being moved.
type PackageDetails struct {
	description   string
	size          SizeClass
	weightKg      float64
	fragile       bool
	cargoCategory string
	vehicle       VehicleClass
}

// PackageInput carries raw fields for NewPackageDetails.
type PackageInput struct {
	Description   string
	Size          string
	WeightKg      float64
	Fragile       bool
	CargoCategory string
	Vehicle       string
}

// NewPackageDetails validates size, vehicle and weight. Size defaults to small.
func NewPackageDetails(in PackageInput) (PackageDetails, error) {
	size := SizeClass(strings.ToLower(strings.TrimSpace(in.Size)))
	if size == "" {
		size = SizeSmall
	}
	switch size {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
	default:
		return PackageDetails{}, errs.NewValueIsInvalidErrorWithCause("size", fmt.Errorf("%q is not a valid size", in.Size))
	}

	vehicle, err := ParseVehicle(in.Vehicle)
	if err != nil {
		return PackageDetails{}, err
	}

	if in.WeightKg < 0 || in.WeightKg > maxWeightKg {
		return PackageDetails{}, errs.NewValueIsOutOfRangeError("weight", in.WeightKg, 0, maxWeightKg)
	}

	return PackageDetails{
		description:   strings.TrimSpace(in.Description),
		size:          size,
		weightKg:      in.WeightKg,
		fragile:       in.Fragile,
		cargoCategory: strings.TrimSpace(in.CargoCategory),
		vehicle:       vehicle,
	}, nil
}

func (p PackageDetails) Description() string { return p.description }
func (p PackageDetails) Size() SizeClass { return p.size }
func (p PackageDetails) WeightKg() float64 { return p.weightKg }
func (p PackageDetails) Fragile() bool { return p.fragile }
func (p PackageDetails) CargoCategory() string { return p.cargoCategory }
func (p PackageDetails) Vehicle() VehicleClass { return p.vehicle }
