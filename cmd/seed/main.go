package main

import (
	"fmt"
	"log"
	"time"

	"clinic-appointment-manager/config"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/infrastructure/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds a development database with a service catalog, staff accounts and a
// population of patients with waiting-list entries. Safe to re-run: rows are
// upserted by their natural keys.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedClinicServices(db); err != nil {
		log.Fatalf("seed clinic services: %v", err)
	}
	if err := seedStaff(db); err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	if err := seedPatients(db, 50); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedClinicServices(db *gorm.DB) error {
	active := true
	services := []entity.ClinicService{
		{Code: "general_checkup", Name: "General Checkup", DurationMinutes: 30, Price: decimal.NewFromInt(300)},
		{Code: "dental_cleaning", Name: "Dental Cleaning", DurationMinutes: 45, Price: decimal.NewFromInt(500)},
		{Code: "dermatology", Name: "Dermatology Consultation", DurationMinutes: 30, Price: decimal.NewFromInt(650)},
		{Code: "physiotherapy", Name: "Physiotherapy Session", DurationMinutes: 60, Price: decimal.NewFromInt(450)},
		{Code: "cardiology", Name: "Cardiology Consultation", DurationMinutes: 45, Price: decimal.NewFromInt(900)},
	}

	for i := range services {
		services[i].IsActive = &active
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "duration_minutes", "price", "is_active"}),
		}).Create(&services[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("clinic services seeded: %d", len(services))
	return nil
}

func seedStaff(db *gorm.DB) error {
	accounts := []struct {
		email    string
		name     string
		roleID   int
		password string
	}{
		{"admin@clinic.local", "Clinic Admin", entity.RoleIDAdmin, "admin12345"},
		{"frontdesk@clinic.local", "Front Desk", entity.RoleIDStaff, "staff12345"},
	}

	active := true
	for _, a := range accounts {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := entity.User{
			RoleID:   a.roleID,
			Email:    a.email,
			Password: string(hashed),
			FullName: a.name,
			IsActive: &active,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&user).Error; err != nil {
			return err
		}
	}

	log.Printf("staff accounts seeded: %d", len(accounts))
	return nil
}

func seedPatients(db *gorm.DB, count int) error {
	serviceCodes := []string{"general_checkup", "dental_cleaning", "dermatology", "physiotherapy", "cardiology"}
	priorities := []entity.Priority{entity.PriorityHigh, entity.PriorityMedium, entity.PriorityLow}
	genders := []string{"M", "F"}

	hashed, err := bcrypt.GenerateFromPassword([]byte("patient12345"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	active := true
	seeded := 0
	for i := 0; i < count; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			user := entity.User{
				RoleID:   entity.RoleIDPatient,
				Email:    gofakeit.Email(),
				Password: string(hashed),
				FullName: gofakeit.Name(),
				IsActive: &active,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			profile := entity.PatientProfile{
				UserID:              user.ID,
				MedicalRecordNumber: fmt.Sprintf("MRN-%06d", gofakeit.Number(1, 999999)),
				PhoneNumber:         gofakeit.Phone(),
				DateOfBirth:         gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2006, 12, 31, 0, 0, 0, 0, time.UTC)),
				Gender:              genders[gofakeit.Number(0, 1)],
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}

			// Roughly two thirds of patients go straight onto the waiting list
			if gofakeit.Number(0, 2) < 2 {
				entry := entity.WaitingListEntry{
					PatientID:       user.ID,
					AppointmentType: serviceCodes[gofakeit.Number(0, len(serviceCodes)-1)],
					Priority:        priorities[gofakeit.Number(0, len(priorities)-1)],
					Status:          entity.WaitingListStatusWaiting,
				}
				if gofakeit.Bool() {
					d := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0))
					entry.PreferredDates = entity.StringList{d.Format("2006-01-02")}
				}
				if gofakeit.Bool() {
					entry.PreferredTimes = entity.StringList{fmt.Sprintf("%02d:00", gofakeit.Number(8, 16))}
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			// Duplicate emails or MRNs from the faker are fine on re-runs
			log.Printf("skipping patient %d: %v", i, err)
			continue
		}
		seeded++
	}

	log.Printf("patients seeded: %d/%d", seeded, count)
	return nil
}
