package domain

type ApplicationCategory string

const (
	// ApplicationCategoryNative marks applications that run their own login.
	ApplicationCategoryNative ApplicationCategory = "native"
	// ApplicationCategoryPortal marks applications secured by the portal.
	ApplicationCategoryPortal ApplicationCategory = "portal"
)

// Application is a launchable entry of the portal catalog.
type Application struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    ApplicationCategory `json:"category"`
	URL         *string             `json:"url"`
	IsActive    bool                `json:"is_active"`
}

// ApplicationToken is the placeholder launch token handed out per application.
type ApplicationToken struct {
	AccessToken string `json:"access_token"`
	AppID       string `json:"app_id"`
}
