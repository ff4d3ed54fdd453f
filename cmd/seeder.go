package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/transport-management/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "maintenance_requests", "tada_claims", "trips", "entitled_vehicles", "vehicles", "drivers", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		users := []struct {
			Email      string
			Name       string
			Department string
			Company    string
			Role       auth.Role
		}{
			{"budi@mail.com", "Budi", "Engineering", "PT Nusantara", auth.RoleEmployee},
			{"sari@mail.com", "Sari Manager", "Engineering", "PT Nusantara", auth.RoleManager},
			{"agus@mail.com", "Agus Transport", "Transport", "PT Nusantara", auth.RoleTransport},
			{"rina@mail.com", "Rina Admin", "Operations", "PT Nusantara", auth.RoleAdmin},
		}

		for _, u := range users {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			err := db.Exec(
				"INSERT INTO users (email, name, password_hash, department, company, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
				u.Email, u.Name, string(hash), u.Department, u.Company, string(u.Role),
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
		}

		drivers := []struct {
			Name      string
			Phone     string
			LicenseNo string
		}{
			{"Joko", "+62-811-1111", "SIM-A-0001"},
			{"Tono", "+62-811-2222", "SIM-A-0002"},
			{"Wati", "+62-811-3333", "SIM-A-0003"},
		}

		for _, d := range drivers {
			var exists int
			if err := db.Raw("SELECT 1 FROM drivers WHERE license_no = ?", d.LicenseNo).Row().Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(
				"INSERT INTO drivers (name, phone, license_no, active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				d.Name, d.Phone, d.LicenseNo,
			).Error
			if err != nil {
				log.Fatalf("failed to insert driver %s: %v", d.Name, err)
			}
			fmt.Printf("Seeded driver: %s\n", d.Name)
		}

		vehicles := []struct {
			Number   string
			Type     string
			Capacity int
		}{
			{"B 1234 ABC", "minibus", 7},
			{"B 5678 DEF", "sedan", 4},
			{"B 9012 GHI", "van", 12},
		}

		for _, v := range vehicles {
			var exists int
			if err := db.Raw("SELECT 1 FROM vehicles WHERE number = ?", v.Number).Row().Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(
				"INSERT INTO vehicles (number, type, capacity, active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				v.Number, v.Type, v.Capacity,
			).Error
			if err != nil {
				log.Fatalf("failed to insert vehicle %s: %v", v.Number, err)
			}
			fmt.Printf("Seeded vehicle: %s\n", v.Number)
		}

		// give the sample employee an entitled vehicle for maintenance flows
		var employeeID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "budi@mail.com").Row().Scan(&employeeID); err != nil {
			log.Fatalf("failed to lookup employee id: %v", err)
		}

		var exists int
		if err := db.Raw("SELECT 1 FROM entitled_vehicles WHERE user_id = ?", employeeID).Row().Scan(&exists); err != nil {
			err := db.Exec(
				"INSERT INTO entitled_vehicles (user_id, vehicle_number, vehicle_type, active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				employeeID, "B 3456 JKL", "motorcycle",
			).Error
			if err != nil {
				log.Fatalf("failed to insert entitled vehicle: %v", err)
			}
			fmt.Println("Seeded entitled vehicle for budi@mail.com")
		}

		fmt.Println("Seeding completed")
	},
}
