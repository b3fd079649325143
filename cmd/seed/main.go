package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nerve-health/referral/backend/internal/adapters/database"
	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/postgres"
	"github.com/nerve-health/referral/backend/internal/infrastructure/clients/typesense"
	"github.com/nerve-health/referral/backend/pkg/config"
)

func intPtr(v int) *int { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		if err := tsClient.InitSchema(context.Background()); err != nil {
			log.Printf("Failed to init Typesense schema: %v", err)
		}
	}

	hospitalRepo := database.NewHospitalAdapter(pgClient)

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				triage_history,
				patients,
				users,
				hospitals
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	// Demo hospital fleet (Mumbai metro area)
	hospitals := []entities.Hospital{
		{
			ID:   uuid.New().String(),
			Name: "City General Hospital",
			Address: entities.Address{
				Street: "123 Main Street", City: "Mumbai", State: "Maharashtra", Pincode: "400001",
			},
			ContactNumber: "+91-22-12345678",
			Email:         "info@citygeneral.com",
			HospitalType:  "government",
			Facilities: &entities.Facilities{
				EmergencyServices: true, ICU: true, ICUBeds: 20, GeneralBeds: 200,
				Ventilators: 15, OperationTheaters: 5, AmbulanceService: true,
				BloodBank: true, Pharmacy: true, Laboratory: true, Radiology: true,
				MRIScanner: true, CTScanner: true, Dialysis: true, Physiotherapy: true,
			},
			Specializations: []string{"cardiology", "neurology", "trauma", "emergency-medicine", "general-surgery"},
			Staff: &entities.Staff{
				Doctors: entities.StaffCount{Total: 50, Available: 35},
				Nurses:  entities.StaffCount{Total: 100, Available: 80},
				Specialists: []entities.Specialist{
					{Specialization: "cardiology", Name: "Dr. Sharma", Available: true},
					{Specialization: "neurology", Name: "Dr. Patel", Available: true},
					{Specialization: "trauma", Name: "Dr. Kumar", Available: true},
				},
			},
			CurrentStatus: &entities.HospitalStatus{
				IsAcceptingPatients: true, EmergencyAvailable: true,
				WaitTime: intPtr(15), OccupancyRate: intPtr(65), LastUpdated: time.Now(),
			},
			Location: &entities.Location{Latitude: 19.0760, Longitude: 72.8777},
			Rating:   4.2,
		},
		{
			ID:   uuid.New().String(),
			Name: "Apollo Super Specialty Hospital",
			Address: entities.Address{
				Street: "456 Healthcare Avenue", City: "Mumbai", State: "Maharashtra", Pincode: "400053",
			},
			ContactNumber: "+91-22-87654321",
			Email:         "care@apollomumbai.com",
			HospitalType:  "private",
			Facilities: &entities.Facilities{
				EmergencyServices: true, ICU: true, ICUBeds: 35, GeneralBeds: 300,
				Ventilators: 25, OperationTheaters: 10, AmbulanceService: true,
				BloodBank: true, Pharmacy: true, Laboratory: true, Radiology: true,
				MRIScanner: true, CTScanner: true, Dialysis: true, Physiotherapy: true,
			},
			Specializations: []string{"cardiology", "oncology", "orthopedics", "neurology", "nephrology", "gastroenterology"},
			Staff: &entities.Staff{
				Doctors: entities.StaffCount{Total: 80, Available: 60},
				Nurses:  entities.StaffCount{Total: 150, Available: 120},
				Specialists: []entities.Specialist{
					{Specialization: "cardiology", Name: "Dr. Mehta", Available: true},
					{Specialization: "oncology", Name: "Dr. Reddy", Available: true},
					{Specialization: "orthopedics", Name: "Dr. Gupta", Available: false},
				},
			},
			CurrentStatus: &entities.HospitalStatus{
				IsAcceptingPatients: true, EmergencyAvailable: true,
				WaitTime: intPtr(10), OccupancyRate: intPtr(70), LastUpdated: time.Now(),
			},
			Location: &entities.Location{Latitude: 19.1136, Longitude: 72.8697},
			Rating:   4.6,
		},
		{
			ID:   uuid.New().String(),
			Name: "Sunshine Children's Hospital",
			Address: entities.Address{
				Street: "789 Pediatric Lane", City: "Mumbai", State: "Maharashtra", Pincode: "400028",
			},
			ContactNumber: "+91-22-55556666",
			Email:         "contact@sunshinekids.com",
			HospitalType:  "private",
			Facilities: &entities.Facilities{
				EmergencyServices: true, ICU: true, ICUBeds: 15, GeneralBeds: 100,
				Ventilators: 10, OperationTheaters: 3, AmbulanceService: true,
				BloodBank: false, Pharmacy: true, Laboratory: true, Radiology: true,
				MRIScanner: false, CTScanner: true, Dialysis: false, Physiotherapy: true,
			},
			Specializations: []string{"pediatrics"},
			Staff: &entities.Staff{
				Doctors: entities.StaffCount{Total: 25, Available: 18},
				Nurses:  entities.StaffCount{Total: 50, Available: 40},
				Specialists: []entities.Specialist{
					{Specialization: "pediatrics", Name: "Dr. Verma", Available: true},
					{Specialization: "pediatrics", Name: "Dr. Singh", Available: true},
				},
			},
			CurrentStatus: &entities.HospitalStatus{
				IsAcceptingPatients: true, EmergencyAvailable: true,
				WaitTime: intPtr(20), OccupancyRate: intPtr(55), LastUpdated: time.Now(),
			},
			Location: &entities.Location{Latitude: 19.0596, Longitude: 72.8295},
			Rating:   4.4,
		},
		{
			ID:   uuid.New().String(),
			Name: "Heart Care Institute",
			Address: entities.Address{
				Street: "101 Cardiac Road", City: "Mumbai", State: "Maharashtra", Pincode: "400012",
			},
			ContactNumber: "+91-22-77778888",
			Email:         "help@heartcare.com",
			HospitalType:  "private",
			Facilities: &entities.Facilities{
				EmergencyServices: true, ICU: true, ICUBeds: 25, GeneralBeds: 80,
				Ventilators: 20, OperationTheaters: 4, AmbulanceService: true,
				BloodBank: true, Pharmacy: true, Laboratory: true, Radiology: true,
				MRIScanner: true, CTScanner: true, Dialysis: false, Physiotherapy: true,
			},
			Specializations: []string{"cardiology"},
			Staff: &entities.Staff{
				Doctors: entities.StaffCount{Total: 30, Available: 22},
				Nurses:  entities.StaffCount{Total: 60, Available: 50},
				Specialists: []entities.Specialist{
					{Specialization: "cardiology", Name: "Dr. Choudhary", Available: true},
					{Specialization: "cardiology", Name: "Dr. Joshi", Available: true},
					{Specialization: "cardiology", Name: "Dr. Malhotra", Available: false},
				},
			},
			CurrentStatus: &entities.HospitalStatus{
				IsAcceptingPatients: true, EmergencyAvailable: true,
				WaitTime: intPtr(5), OccupancyRate: intPtr(45), LastUpdated: time.Now(),
			},
			Location: &entities.Location{Latitude: 19.0330, Longitude: 72.8410},
			Rating:   4.8,
		},
		{
			ID:   uuid.New().String(),
			Name: "Government District Hospital",
			Address: entities.Address{
				Street: "District Center", City: "Thane", State: "Maharashtra", Pincode: "400601",
			},
			ContactNumber: "+91-22-33334444",
			Email:         "thane.district@gov.in",
			HospitalType:  "government",
			Facilities: &entities.Facilities{
				EmergencyServices: true, ICU: true, ICUBeds: 10, GeneralBeds: 150,
				Ventilators: 8, OperationTheaters: 3, AmbulanceService: true,
				BloodBank: true, Pharmacy: true, Laboratory: true, Radiology: true,
				MRIScanner: false, CTScanner: true, Dialysis: true, Physiotherapy: true,
			},
			Specializations: []string{"general-surgery", "orthopedics", "gynecology", "pediatrics", "emergency-medicine"},
			Staff: &entities.Staff{
				Doctors: entities.StaffCount{Total: 40, Available: 25},
				Nurses:  entities.StaffCount{Total: 80, Available: 55},
				Specialists: []entities.Specialist{
					{Specialization: "orthopedics", Name: "Dr. Rane", Available: true},
					{Specialization: "gynecology", Name: "Dr. Deshmukh", Available: true},
				},
			},
			CurrentStatus: &entities.HospitalStatus{
				IsAcceptingPatients: true, EmergencyAvailable: true,
				WaitTime: intPtr(45), OccupancyRate: intPtr(80), LastUpdated: time.Now(),
			},
			Location: &entities.Location{Latitude: 19.2183, Longitude: 72.9781},
			Rating:   3.5,
		},
	}

	for i := range hospitals {
		if err := hospitalRepo.Create(ctx, &hospitals[i]); err != nil {
			log.Printf("Failed to create hospital %s: %v", hospitals[i].Name, err)
			continue
		}
		log.Printf("Seeded hospital: %s", hospitals[i].Name)
	}

	log.Printf("Seed completed: %d hospitals", len(hospitals))
}
