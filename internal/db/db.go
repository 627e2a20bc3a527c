package db

import (
	"log"
	"os"

	"hydronet/internal/models"
	"hydronet/internal/network"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=hydronet port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.SimulationRun{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedSampleProject()
}

// seedSampleProject creates the demo network every fresh install gets,
// owned by a system user so the first login has something to open.
func seedSampleProject() {
	var count int64
	DB.Model(&models.Project{}).Count(&count)
	if count > 0 {
		log.Println("Projects already seeded, skipping")
		return
	}

	system := models.User{Username: "system", Email: "system@hydronet.local", Password: "!locked"}
	if err := DB.Where(models.User{Email: system.Email}).FirstOrCreate(&system).Error; err != nil {
		log.Printf("Failed to create system user: %v", err)
		return
	}

	project := models.Project{
		UserID: system.ID,
		Name:   "Sample Network",
		Notes:  "A small demo network: one reservoir feeding four junctions.\n\nEdit or replace it with your own data.",
	}
	if err := project.SetTables(SampleTables()); err != nil {
		log.Printf("Failed to encode sample network: %v", err)
		return
	}
	if err := DB.Create(&project).Error; err != nil {
		log.Printf("Failed to create sample project: %v", err)
		return
	}
	log.Println("Sample project created successfully")
}

// SampleTables is the bundled demo dataset, the same network the
// sample CSV files under samples/ describe.
func SampleTables() *network.Tables {
	return &network.Tables{
		Nodes: []network.Node{
			{Type: network.TypeReservoir, ID: "R1", X: 0, Y: 50, Elevation: 60},
			{Type: network.TypeJunction, ID: "J1", X: 20, Y: 50, Elevation: 10},
			{Type: network.TypeJunction, ID: "J2", X: 40, Y: 70, Elevation: 12},
			{Type: network.TypeJunction, ID: "J3", X: 40, Y: 30, Elevation: 8},
			{Type: network.TypeJunction, ID: "J4", X: 60, Y: 50, Elevation: 9},
			{Type: network.TypeTank, ID: "T1", X: 80, Y: 50, Elevation: 35},
		},
		Pipes: []network.Pipe{
			{ID: "P1", From: "R1", To: "J1", Length: 1000, Diameter: 300, Roughness: 130},
			{ID: "P2", From: "J1", To: "J2", Length: 800, Diameter: 250, Roughness: 130},
			{ID: "P3", From: "J1", To: "J3", Length: 800, Diameter: 250, Roughness: 130},
			{ID: "P4", From: "J2", To: "J4", Length: 600, Diameter: 200, Roughness: 120},
			{ID: "P5", From: "J3", To: "J4", Length: 600, Diameter: 200, Roughness: 120},
			{ID: "P6", From: "J4", To: "T1", Length: 1200, Diameter: 300, Roughness: 130},
		},
		Demands: []network.Demand{
			{NodeID: "J2", Flow: 0.015},
			{NodeID: "J3", Flow: 0.020},
			{NodeID: "J4", Flow: 0.010},
		},
	}
}
