package entities

import (
	"math"
	"strings"
	"time"
)

// Hospital represents a hospital and its live capacity in the system
type Hospital struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Address         Address         `json:"address" db:"-"`
	ContactNumber   string          `json:"contact_number" db:"contact_number"`
	Email           string          `json:"email" db:"email"`
	HospitalType    string          `json:"hospital_type" db:"hospital_type"`
	Specializations []string        `json:"specializations" db:"-"`
	Facilities      *Facilities     `json:"facilities,omitempty" db:"-"`
	Staff           *Staff          `json:"staff,omitempty" db:"-"`
	CurrentStatus   *HospitalStatus `json:"current_status,omitempty" db:"-"`
	Location        *Location       `json:"location,omitempty" db:"-"`
	Rating          float64         `json:"rating" db:"rating"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// RouteInfo is attached per request when the patient location is known.
	// It is never persisted.
	RouteInfo *RouteInfo `json:"route_info,omitempty" db:"-"`
}

// Address represents a physical address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Pincode string `json:"pincode" db:"pincode"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Facilities holds the capacity flags and bed counts a hospital reports.
// Boolean flags and numeric counts are both treated as "present" when
// true or positive.
type Facilities struct {
	EmergencyServices bool `json:"emergency_services" db:"emergency_services"`
	ICU               bool `json:"icu" db:"icu"`
	ICUBeds           int  `json:"icu_beds" db:"icu_beds"`
	GeneralBeds       int  `json:"general_beds" db:"general_beds"`
	Ventilators       int  `json:"ventilators" db:"ventilators"`
	OperationTheaters int  `json:"operation_theaters" db:"operation_theaters"`
	AmbulanceService  bool `json:"ambulance_service" db:"ambulance_service"`
	BloodBank         bool `json:"blood_bank" db:"blood_bank"`
	Pharmacy          bool `json:"pharmacy" db:"pharmacy"`
	Laboratory        bool `json:"laboratory" db:"laboratory"`
	Radiology         bool `json:"radiology" db:"radiology"`
	MRIScanner        bool `json:"mri_scanner" db:"mri_scanner"`
	CTScanner         bool `json:"ct_scanner" db:"ct_scanner"`
	Dialysis          bool `json:"dialysis" db:"dialysis"`
	Physiotherapy     bool `json:"physiotherapy" db:"physiotherapy"`
}

// Has reports whether a facility flag is present and truthy/positive.
func (f *Facilities) Has(flag string) bool {
	if f == nil {
		return false
	}
	switch flag {
	case "emergencyServices":
		return f.EmergencyServices
	case "icu":
		return f.ICU
	case "icuBeds":
		return f.ICUBeds > 0
	case "generalBeds":
		return f.GeneralBeds > 0
	case "ventilators":
		return f.Ventilators > 0
	case "operationTheaters":
		return f.OperationTheaters > 0
	case "ambulanceService":
		return f.AmbulanceService
	case "bloodBank":
		return f.BloodBank
	case "pharmacy":
		return f.Pharmacy
	case "laboratory":
		return f.Laboratory
	case "radiology":
		return f.Radiology
	case "mriScanner":
		return f.MRIScanner
	case "ctScanner":
		return f.CTScanner
	case "dialysis":
		return f.Dialysis
	case "physiotherapy":
		return f.Physiotherapy
	default:
		return false
	}
}

// Staff holds staffing levels
type Staff struct {
	Doctors     StaffCount   `json:"doctors" db:"-"`
	Nurses      StaffCount   `json:"nurses" db:"-"`
	Specialists []Specialist `json:"specialists,omitempty" db:"-"`
}

// StaffCount tracks total and currently available headcount
type StaffCount struct {
	Total     int `json:"total" db:"total"`
	Available int `json:"available" db:"available"`
}

// Specialist is an on-call specialist entry
type Specialist struct {
	Specialization string `json:"specialization" db:"specialization"`
	Name           string `json:"name" db:"name"`
	Available      bool   `json:"available" db:"available"`
}

// HospitalStatus is the live capacity snapshot edited by hospital
// staff. WaitTime and OccupancyRate are nullable so an unreported value
// can be told apart from a genuine zero.
type HospitalStatus struct {
	IsAcceptingPatients bool      `json:"is_accepting_patients" db:"is_accepting_patients"`
	EmergencyAvailable  bool      `json:"emergency_available" db:"emergency_available"`
	WaitTime            *int      `json:"wait_time,omitempty" db:"wait_time"`
	OccupancyRate       *int      `json:"occupancy_rate,omitempty" db:"occupancy_rate"`
	LastUpdated         time.Time `json:"last_updated" db:"last_updated"`
}

// RouteInfo is the distance/duration annotation for a specific patient location
type RouteInfo struct {
	DistanceKm           float64 `json:"distance_km"`
	DurationMin          int     `json:"duration_min"`
	EmergencyDurationMin int     `json:"emergencyDuration_min,omitempty"`
}

// ETA returns the emergency duration when populated, otherwise the
// normal transit duration.
func (r *RouteInfo) ETA() int {
	if r.EmergencyDurationMin > 0 {
		return r.EmergencyDurationMin
	}
	return r.DurationMin
}

// Valid reports whether the route carries a usable distance. A route
// computed from malformed coordinates propagates NaN and must be
// treated as "distance unknown" rather than zero.
func (r *RouteInfo) Valid() bool {
	return r != nil && !math.IsNaN(r.DistanceKm)
}

// Defaults applied when the corresponding nested field is absent.
const (
	DefaultWaitTime      = 30
	DefaultOccupancyRate = 50
)

// WaitTime returns the reported wait time in minutes, defaulting to 30
// when the hospital has not published one.
func (h *Hospital) WaitTime() int {
	if h.CurrentStatus == nil || h.CurrentStatus.WaitTime == nil {
		return DefaultWaitTime
	}
	return *h.CurrentStatus.WaitTime
}

// OccupancyRate returns the occupancy percentage, defaulting to 50.
func (h *Hospital) OccupancyRate() int {
	if h.CurrentStatus == nil || h.CurrentStatus.OccupancyRate == nil {
		return DefaultOccupancyRate
	}
	return *h.CurrentStatus.OccupancyRate
}

// EmergencyAvailable reports whether the hospital currently accepts
// emergency cases.
func (h *Hospital) EmergencyAvailable() bool {
	return h.CurrentStatus != nil && h.CurrentStatus.EmergencyAvailable
}

// AvailableDoctors returns the number of doctors on duty.
func (h *Hospital) AvailableDoctors() int {
	if h.Staff == nil {
		return 0
	}
	return h.Staff.Doctors.Available
}

// ICUBeds returns the reported ICU bed count.
func (h *Hospital) ICUBeds() int {
	if h.Facilities == nil {
		return 0
	}
	return h.Facilities.ICUBeds
}

// PrimarySpecialization returns the hospital's flagship specialization,
// the first entry of its specialization list.
func (h *Hospital) PrimarySpecialization() string {
	if len(h.Specializations) == 0 {
		return ""
	}
	return h.Specializations[0]
}

// HasSpecialization reports whether the hospital offers a specialization.
func (h *Hospital) HasSpecialization(spec string) bool {
	for _, s := range h.Specializations {
		if s == spec {
			return true
		}
	}
	return false
}

// NameContains reports whether the hospital name contains the keyword,
// case-insensitively.
func (h *Hospital) NameContains(keyword string) bool {
	return strings.Contains(strings.ToLower(h.Name), keyword)
}
