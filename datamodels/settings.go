package datamodels

// SiteSettings are the editable bits of the public site: contact details and branding.
type SiteSettings struct {
	SiteName          string   `yaml:"site_name"`
	Tagline           string   `yaml:"tagline"`
	Phone             string   `yaml:"phone"`
	Email             string   `yaml:"email"`
	Address           string   `yaml:"address"`
	WhatsAppURL       string   `yaml:"whatsapp_url"`
	WhatsAppThreshold int      `yaml:"whatsapp_threshold"`
	Region            string   `yaml:"region"`
	Clients           []string `yaml:"clients"`
}

// DefaultSiteSettings are used for any key missing from the settings file.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:          "Dharvista",
		Tagline:           "Connecting talent with opportunity",
		Phone:             "+91 98765 43210",
		Email:             "careers@dharvista.in",
		Address:           "Aruppukottai, Tamil Nadu",
		WhatsAppURL:       "https://whatsapp.com/channel/0029Vb6zCH20LKZKj1w4sB2j",
		WhatsAppThreshold: 300,
		Region:            "Tamil Nadu",
		Clients:           []string{"Construction", "Textile Manufacturing", "Industrial Safety", "Finance"},
	}
}

// WithDefaults fills every empty field of s from DefaultSiteSettings.
func (s SiteSettings) WithDefaults() SiteSettings {
	d := DefaultSiteSettings()
	if s.SiteName == "" {
		s.SiteName = d.SiteName
	}
	if s.Tagline == "" {
		s.Tagline = d.Tagline
	}
	if s.Phone == "" {
		s.Phone = d.Phone
	}
	if s.Email == "" {
		s.Email = d.Email
	}
	if s.Address == "" {
		s.Address = d.Address
	}
	if s.WhatsAppURL == "" {
		s.WhatsAppURL = d.WhatsAppURL
	}
	if s.WhatsAppThreshold <= 0 {
		s.WhatsAppThreshold = d.WhatsAppThreshold
	}
	if s.Region == "" {
		s.Region = d.Region
	}
	if len(s.Clients) == 0 {
		s.Clients = d.Clients
	}
	return s
}
