package main

import (
	"context"
	"log"
	"os"

	"github.com/wahealth/sca-simulator/internal/adapters/database"
	"github.com/wahealth/sca-simulator/internal/adapters/search"
	"github.com/wahealth/sca-simulator/internal/application/services"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/typesense"
	"github.com/wahealth/sca-simulator/pkg/config"
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

	ctx := context.Background()

	var searchRepo *search.TypesenseAdapter
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err == nil {
			searchRepo = search.NewTypesenseAdapter(tsClient)
			if err := searchRepo.InitSchema(ctx); err != nil {
				log.Printf("Failed to initialize search schema: %v", err)
			}
		}
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				peer_comments,
				consultations,
				doctor_info,
				information_divulged,
				background_details,
				ice_entries,
				cases,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	caseRepo := database.NewCaseAdapter(pgClient)
	var caseService *services.CaseService
	if searchRepo != nil {
		caseService = services.NewCaseService(caseRepo, searchRepo, nil)
	} else {
		caseService = services.NewCaseService(caseRepo, nil, nil)
	}

	cases := []entities.Case{
		{
			CaseNumber:          "SCA-001",
			PatientName:         "Margaret Hill",
			PatientAge:          intPtr(58),
			PatientGender:       entities.GenderFemale,
			PresentingComplaint: "Chest tightness on exertion for three weeks",
			ICEEntries: []entities.ICEEntry{
				{ICEType: entities.ICETypeConcern, Description: "Worried it is her heart, like her father who died of an MI at 60"},
				{ICEType: entities.ICETypeExpectation, Description: "Expects a referral for a heart scan"},
			},
			BackgroundDetails: []entities.BackgroundDetail{
				{Detail: "Father died of myocardial infarction at 60"},
				{Detail: "Works as a school administrator, sedentary"},
			},
			InformationDivulged: []entities.InformationDivulged{
				{DivulgenceType: entities.DivulgenceFreely, Description: "Tightness comes on climbing stairs, settles with rest"},
				{DivulgenceType: entities.DivulgenceSpecificallyAsked, Description: "Smokes ten cigarettes a day, has done for 30 years"},
			},
			DoctorInfo: &entities.DoctorInfo{
				Name:               "Margaret Hill",
				Age:                intPtr(58),
				PastMedicalHistory: "Hypertension",
				CurrentMedication:  "Amlodipine 5mg once daily",
				Context:            "Booked as an urgent same-day appointment",
			},
		},
		{
			CaseNumber:          "SCA-002",
			PatientName:         "Daniel Okoye",
			PatientAge:          intPtr(34),
			PatientGender:       entities.GenderMale,
			PresentingComplaint: "Low mood and poor sleep since losing his job",
			ICEEntries: []entities.ICEEntry{
				{ICEType: entities.ICETypeIdea, Description: "Thinks he just needs sleeping tablets"},
				{ICEType: entities.ICETypeConcern, Description: "Afraid of being started on antidepressants"},
			},
			BackgroundDetails: []entities.BackgroundDetail{
				{Detail: "Made redundant two months ago, partner works full time"},
			},
			InformationDivulged: []entities.InformationDivulged{
				{DivulgenceType: entities.DivulgenceFreely, Description: "Waking at 4am most mornings"},
				{DivulgenceType: entities.DivulgenceSpecificallyAsked, Description: "Has had fleeting thoughts that life is not worth living, no plans"},
			},
			DoctorInfo: &entities.DoctorInfo{
				Name:    "Daniel Okoye",
				Age:     intPtr(34),
				Context: "First presentation, no previous mental health history on record",
			},
		},
		{
			CaseNumber:          "SCA-003",
			PatientName:         "Priya Sharma",
			PatientAge:          intPtr(27),
			PatientGender:       entities.GenderFemale,
			PresentingComplaint: "Recurrent headaches for two months",
			ICEEntries: []entities.ICEEntry{
				{ICEType: entities.ICETypeConcern, Description: "Worried about a brain tumour after reading online"},
			},
			BackgroundDetails: []entities.BackgroundDetail{
				{Detail: "Recently started a new job with long screen hours"},
			},
			InformationDivulged: []entities.InformationDivulged{
				{DivulgenceType: entities.DivulgenceFreely, Description: "Headaches are band-like, worse at the end of the working day"},
				{DivulgenceType: entities.DivulgenceSpecificallyAsked, Description: "Taking paracetamol most days of the week"},
			},
			DoctorInfo: &entities.DoctorInfo{
				Name: "Priya Sharma",
				Age:  intPtr(27),
			},
		},
	}

	for i := range cases {
		if err := caseService.Create(ctx, &cases[i]); err != nil {
			log.Printf("Failed to create case %s: %v", cases[i].CaseNumber, err)
			continue
		}
		log.Printf("Seeded case %s", cases[i].CaseNumber)
	}

	log.Println("Seeding complete")
}
