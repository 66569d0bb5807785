package service

import (
	"fmt"
	"time"

	"portal/internal/domain"
)

// CatalogService serves the fixed application catalog.
type CatalogService interface {
	ListApplications() []domain.Application
	// MintApplicationToken returns a placeholder launch token. It is not a
	// credential: nothing verifies it, and real single sign-on exchange is
	// not implemented.
	MintApplicationToken(appID, userID string) domain.ApplicationToken
}

type catalogService struct {
	apps []domain.Application
	now  func() time.Time
}

func NewCatalogService() CatalogService {
	return &catalogService{
		apps: defaultCatalog(),
		now:  time.Now,
	}
}

func (s *catalogService) ListApplications() []domain.Application {
	out := make([]domain.Application, len(s.apps))
	for i, app := range s.apps {
		if app.URL != nil {
			u := *app.URL
			app.URL = &u
		}
		out[i] = app
	}
	return out
}

func (s *catalogService) MintApplicationToken(appID, userID string) domain.ApplicationToken {
	return domain.ApplicationToken{
		AccessToken: fmt.Sprintf("portal_token_%s_%s_%d", appID, userID, s.now().Unix()),
		AppID:       appID,
	}
}

func defaultCatalog() []domain.Application {
	native := func(id, name, description, icon, url string) domain.Application {
		return domain.Application{
			ID:          id,
			Name:        name,
			Description: description,
			Icon:        icon,
			Category:    domain.ApplicationCategoryNative,
			URL:         &url,
			IsActive:    true,
		}
	}
	portal := func(id, name, description, icon string) domain.Application {
		return domain.Application{
			ID:          id,
			Name:        name,
			Description: description,
			Icon:        icon,
			Category:    domain.ApplicationCategoryPortal,
			IsActive:    true,
		}
	}

	return []domain.Application{
		native("app1", "WordPress", "Plateforme de gestion de contenu", "🌐", "https://wordpress.example.com"),
		native("app2", "Odoo ERP", "Système de gestion d'entreprise", "📊", "https://odoo.example.com"),
		native("app3", "Nextcloud", "Stockage et collaboration cloud", "☁️", "https://nextcloud.example.com"),
		native("app4", "GitLab CE", "Plateforme DevOps intégrée", "🔧", "https://gitlab.example.com"),
		native("app5", "Jira", "Gestion de projets Agile", "📋", "https://jira.example.com"),
		native("app6", "Confluence", "Espace de travail collaboratif", "📝", "https://confluence.example.com"),
		native("app7", "Mattermost", "Communication d'équipe sécurisée", "💬", "https://mattermost.example.com"),
		native("app8", "Grafana", "Monitoring et visualisation", "📈", "https://grafana.example.com"),

		portal("portal1", "Analytics Pro", "Analyse avancée des données", "📊"),
		portal("portal2", "CRM Manager", "Gestion de la relation client", "👥"),
		portal("portal3", "Invoice System", "Système de facturation", "💰"),
		portal("portal4", "Document Hub", "Centre de documentation", "📁"),
		portal("portal5", "Task Tracker", "Suivi des tâches et projets", "✅"),
		portal("portal6", "Report Builder", "Générateur de rapports", "📄"),
		portal("portal7", "Security Center", "Centre de sécurité", "🔐"),
		portal("portal8", "API Gateway", "Passerelle d'API", "🔗"),
	}
}
