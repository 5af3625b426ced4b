package ledger

import (
	"time"

	"doacao-platform/internal/models"
)

// SeedRequests is the initial dataset shown on a fresh install.
func SeedRequests(now time.Time) []models.HelpRequest {
	day := 24 * time.Hour
	return []models.HelpRequest{
		{
			ID:          "seed-cestas-basicas",
			UserID:      "seed-user-1",
			UserName:    "Dona Cida",
			Title:       "Cestas básicas para a comunidade",
			Description: "Arrecadação para montar 40 cestas básicas para famílias do bairro.",
			Category:    models.CategoryFood,
			Urgency:     models.UrgencyHigh,
			Location:    "São Paulo, SP",
			Goal:        2000,
			Raised:      850,
			Status:      models.StatusOpen,
			Verified:    true,
			Image:       "https://images.unsplash.com/photo-1488521787991-ed7bbaae773c",
			PixKey:      "cida@exemplo.com",
			CreatedAt:   now.Add(-2 * day),
			Updates: []models.UpdatePost{
				{ID: "seed-update-1", Date: now.Add(-1 * day), Text: "Já compramos os primeiros 15 kits, obrigada!"},
			},
		},
		{
			ID:          "seed-remedios",
			UserID:      "seed-user-2",
			UserName:    "Seu João",
			Title:       "Remédios para tratamento contínuo",
			Description: "Preciso de ajuda para comprar os medicamentos dos próximos três meses.",
			Category:    models.CategoryHealth,
			Urgency:     models.UrgencyCritical,
			Location:    "Recife, PE",
			Goal:        600,
			Raised:      120,
			Status:      models.StatusInProgress,
			Verified:    true,
			PixKey:      "+5581999990000",
			CreatedAt:   now.Add(-5 * day),
			Updates:     []models.UpdatePost{},
		},
		{
			ID:          "seed-material-escolar",
			UserID:      "seed-user-3",
			UserName:    "Escola Comunitária Esperança",
			Title:       "Material escolar para 30 crianças",
			Description: "Cadernos, lápis e mochilas para o início do ano letivo.",
			Category:    models.CategoryEducation,
			Urgency:     models.UrgencyMedium,
			Location:    "Belo Horizonte, MG",
			Goal:        1500,
			Raised:      1500,
			Status:      models.StatusCompleted,
			Verified:    true,
			PixKey:      "12.345.678/0001-90",
			CreatedAt:   now.Add(-20 * day),
			Updates: []models.UpdatePost{
				{ID: "seed-update-2", Date: now.Add(-3 * day), Text: "Meta atingida! Entregamos as mochilas hoje."},
			},
		},
	}
}
