package models

// App is one embeddable web application in the registry.
type App struct {
	ID        string `yaml:"id" json:"id"`               // Unique identifier
	Name      string `yaml:"name" json:"name"`           // Display name
	URL       string `yaml:"url" json:"url"`             // Target URL
	Icon      string `yaml:"icon" json:"icon"`           // Icon path or URL
	IsDefault bool   `yaml:"is_default" json:"isDefault"` // Seeded app, cannot be removed
}

// AppConfig is the root YAML structure of a seed file
type AppConfig struct {
	Apps []App `yaml:"apps"`
}

// Patch holds the fields to merge into an existing App.
// Nil fields are left untouched.
type Patch struct {
	Name *string
	URL  *string
	Icon *string
}

// URLPatch returns a patch that only changes the URL
func URLPatch(url string) Patch {
	return Patch{URL: &url}
}

// Apply merges the patch into a copy of the app and returns it
func (p Patch) Apply(a App) App {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.URL != nil {
		a.URL = *p.URL
	}
	if p.Icon != nil {
		a.Icon = *p.Icon
	}
	return a
}

// Draft is the transient name + URL pair collected by the Add dialog
type Draft struct {
	Name string
	URL  string
}
