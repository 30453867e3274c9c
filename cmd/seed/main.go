package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"styllobarbe/internal/models"
	"styllobarbe/internal/storage/sqlite"
)

// Service templates paired with the specialties that make a barber
// eligible for them.
var serviceTemplates = []struct {
	name     string
	category models.ServiceCategory
	price    int64
	duration int
}{
	{"Corte Masculino", models.CategoryCut, 4500, 30},
	{"Corte Degradê", models.CategoryCut, 5500, 45},
	{"Barba Completa", models.CategoryBeard, 3000, 30},
	{"Barba Navalhada", models.CategoryBeard, 3500, 30},
	{"Corte e Barba", models.CategoryCombo, 7000, 60},
	{"Sobrancelha", models.CategoryOther, 1500, 30},
}

var specialtyPool = []string{"corte", "barba", "degradê", "sobrancelha"}

func main() {
	dbPath := flag.String("db", "data/styllobarbe.db", "sqlite database path")
	shops := flag.Int("shops", 5, "barbershops to create")
	barbersPerShop := flag.Int("barbers", 4, "barbers per shop")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	database, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	gofakeit.Seed(time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog := sqlite.NewCatalog(database)
	if err := seedShops(ctx, catalog, *shops, *barbersPerShop); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Println("seed complete")
}

func seedShops(ctx context.Context, catalog *sqlite.Catalog, shops, barbersPerShop int) error {
	log.Printf("seeding %d barbershops", shops)

	for i := 0; i < shops; i++ {
		shop := models.Barbershop{
			ID:            uuid.NewString(),
			Name:          fmt.Sprintf("Barbearia %s", gofakeit.LastName()),
			Address:       gofakeit.Street() + ", " + gofakeit.City(),
			Phone:         gofakeit.Phone(),
			Rating:        gofakeit.Float64Range(3.5, 5.0),
			RatingCount:   gofakeit.Number(10, 500),
			DistanceKm:    gofakeit.Float64Range(0.3, 15.0),
			TravelTimeMin: gofakeit.Number(5, 45),
		}
		if err := catalog.InsertBarbershop(ctx, shop); err != nil {
			return err
		}

		for _, tpl := range serviceTemplates {
			svc := models.Service{
				ID:           uuid.NewString(),
				BarbershopID: shop.ID,
				Name:         tpl.name,
				Description:  gofakeit.Sentence(8),
				Category:     tpl.category,
				PriceCents:   tpl.price,
				DurationMin:  tpl.duration,
			}
			if err := catalog.InsertService(ctx, svc); err != nil {
				return err
			}
		}

		for j := 0; j < barbersPerShop; j++ {
			barber := models.Barber{
				ID:           uuid.NewString(),
				BarbershopID: shop.ID,
				Name:         gofakeit.Name(),
				Specialties:  pickSpecialties(),
				Rating:       gofakeit.Float64Range(3.0, 5.0),
				RatingCount:  gofakeit.Number(5, 300),
				Available:    gofakeit.Number(0, 9) > 0,
			}
			if err := catalog.InsertBarber(ctx, barber); err != nil {
				return err
			}
		}

		log.Printf("barbershop seeded: %s", shop.Name)
	}
	return nil
}

func pickSpecialties() []string {
	n := gofakeit.Number(1, len(specialtyPool))
	picked := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(picked) < n {
		s := specialtyPool[gofakeit.Number(0, len(specialtyPool)-1)]
		if !seen[s] {
			seen[s] = true
			picked = append(picked, s)
		}
	}
	return picked
}
