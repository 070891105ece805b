package main

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogrepo "fitstudio/internal/catalog/repository"
	registryrepo "fitstudio/internal/registry/repository"
	"fitstudio/pkg/config"
	"fitstudio/pkg/model"
)

const JobName = "seed"

type instructorSeed struct {
	ref             model.InstructorRef
	specializations []string
}

var instructors = []instructorSeed{
	{
		ref:             model.InstructorRef{ID: uuid.NewString(), Name: "Priya Sharma", Rating: 4.8, ExperienceYears: 8},
		specializations: []string{"Yoga", "Meditation", "Pilates"},
	},
	{
		ref:             model.InstructorRef{ID: uuid.NewString(), Name: "Raj Patel", Rating: 4.7, ExperienceYears: 6},
		specializations: []string{"HIIT", "CrossFit", "Strength Training"},
	},
	{
		ref:             model.InstructorRef{ID: uuid.NewString(), Name: "Maria Rodriguez", Rating: 4.9, ExperienceYears: 5},
		specializations: []string{"Zumba", "Dance Fitness", "Aerobics"},
	},
	{
		ref:             model.InstructorRef{ID: uuid.NewString(), Name: "David Chen", Rating: 4.6, ExperienceYears: 10},
		specializations: []string{"Kickboxing", "MMA", "Self Defense"},
	},
}

var classTypes = []model.ClassTypeRef{
	{
		ID:                   uuid.NewString(),
		Name:                 "Hatha Yoga",
		Description:          "Gentle yoga focusing on basic postures and breathing techniques. Perfect for beginners.",
		DurationMinutes:      60,
		Difficulty:           model.DifficultyBeginner,
		CaloriesBurnEstimate: 150,
	},
	{
		ID:                   uuid.NewString(),
		Name:                 "Vinyasa Flow",
		Description:          "Dynamic yoga practice linking breath with movement in flowing sequences.",
		DurationMinutes:      75,
		Difficulty:           model.DifficultyIntermediate,
		CaloriesBurnEstimate: 250,
	},
	{
		ID:                   uuid.NewString(),
		Name:                 "HIIT Cardio",
		Description:          "High-intensity interval training for maximum calorie burn and fitness gains.",
		DurationMinutes:      45,
		Difficulty:           model.DifficultyAdvanced,
		CaloriesBurnEstimate: 400,
	},
	{
		ID:                   uuid.NewString(),
		Name:                 "Zumba Dance",
		Description:          "Fun, dance-based workout combining Latin rhythms with easy-to-follow moves.",
		DurationMinutes:      60,
		Difficulty:           model.DifficultyBeginner,
		CaloriesBurnEstimate: 300,
	},
	{
		ID:                   uuid.NewString(),
		Name:                 "CrossFit WOD",
		Description:          "Constantly varied functional movements performed at high intensity.",
		DurationMinutes:      60,
		Difficulty:           model.DifficultyAdvanced,
		CaloriesBurnEstimate: 450,
	},
	{
		ID:                   uuid.NewString(),
		Name:                 "Kickboxing",
		Description:          "High-energy martial arts inspired workout combining punches, kicks, and cardio.",
		DurationMinutes:      50,
		Difficulty:           model.DifficultyIntermediate,
		CaloriesBurnEstimate: 350,
	},
}

var locations = []string{"Studio 1", "Studio 2", "Outdoor Deck", "Rooftop"}

var classHours = []int{6, 7, 8, 9, 17, 18, 19, 20}

type clientSeed struct {
	name  string
	email string
	phone string
}

var sampleClients = []clientSeed{
	{name: "Ananya Gupta", email: "ananya@email.com", phone: "+919876543210"},
	{name: "Rohit Singh", email: "rohit@email.com", phone: "+919876543211"},
	{name: "Kavya Menon", email: "kavya@email.com", phone: "+919876543212"},
	{name: "Arjun Nair", email: "arjun@email.com", phone: "+919876543213"},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting data seeding job")

	sessionRepo := catalogrepo.NewMongoSessionRepository(cfg)
	clientRepo := registryrepo.NewMongoClientRepository(cfg)

	created := seedSessions(ctx, cfg, sessionRepo)
	cfg.Log.Info("Seeded sessions", "count", created)

	for _, c := range sampleClients {
		if _, err := clientRepo.UpsertByEmail(ctx, c.name, c.email, c.phone, time.Now().UTC()); err != nil {
			cfg.Log.Fatal("Failed to seed client", "email", c.email, "error", err)
		}
		cfg.Log.Info("Seeded client", "name", c.name)
	}

	cfg.Log.Info("Data seeding completed successfully")
}

// seedSessions schedules two weeks of classes: four morning and four evening
// slots per day, starting tomorrow.
func seedSessions(ctx context.Context, cfg *config.Config, repo catalogrepo.SessionRepository) int {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	created := 0
	for dayOffset := 1; dayOffset <= 14; dayOffset++ {
		day := startOfDay.AddDate(0, 0, dayOffset)

		for _, hour := range classHours {
			classType := classTypes[rng.Intn(len(classTypes))]
			instructor := pickInstructor(rng, classType.Name)

			session := &model.Session{
				ID:          uuid.NewString(),
				ClassType:   classType,
				Instructor:  instructor,
				StartTime:   day.Add(time.Duration(hour) * time.Hour),
				MaxCapacity: 15 + rng.Intn(11),
				Status:      model.SessionScheduled,
				PriceCents:  int64(500+rng.Intn(1001)) * 100,
				Location:    locations[rng.Intn(len(locations))],
			}

			if err := repo.Insert(ctx, session); err != nil {
				cfg.Log.Fatal("Failed to seed session", "start_time", session.StartTime, "error", err)
			}
			created++
		}
	}
	return created
}

// pickInstructor prefers an instructor whose specializations overlap the
// class name, falling back to anyone.
func pickInstructor(rng *rand.Rand, className string) model.InstructorRef {
	var suitable []model.InstructorRef
	for _, instr := range instructors {
		for _, spec := range instr.specializations {
			if strings.Contains(className, spec) {
				suitable = append(suitable, instr.ref)
				break
			}
		}
	}
	if len(suitable) == 0 {
		return instructors[rng.Intn(len(instructors))].ref
	}
	return suitable[rng.Intn(len(suitable))]
}
