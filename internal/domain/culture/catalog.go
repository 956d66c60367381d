package culture

import "time"

// seededAt matches the timestamp the catalog migration writes.
var seededAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultCatalog is the crop list shipped with the schema. Keep it in sync
// with migrations/00003_cultures.sql.
func DefaultCatalog() []Culture {
	return []Culture{
		{ID: "c0a80001-0000-4000-8000-000000000001", Name: "Algodão", CycleDays: 150, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000002", Name: "Arroz", CycleDays: 120, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000003", Name: "Banana", CycleDays: 365, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000004", Name: "Cacau", CycleDays: 180, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000005", Name: "Café", CycleDays: 240, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000006", Name: "Cana-de-açúcar", CycleDays: 365, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000007", Name: "Feijão", CycleDays: 90, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000008", Name: "Laranja", CycleDays: 300, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-000000000009", Name: "Milho", CycleDays: 120, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-00000000000a", Name: "Soja", CycleDays: 110, CreatedAt: seededAt},
		{ID: "c0a80001-0000-4000-8000-00000000000b", Name: "Trigo", CycleDays: 120, CreatedAt: seededAt},
	}
}
