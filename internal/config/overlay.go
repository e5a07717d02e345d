package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CompaniesFile is a standalone companies.yml so large target lists can live
// outside the main config.
type CompaniesFile struct {
	Companies []Company `yaml:"companies"`
}

// OverlayCompanies replaces cfg.Companies with the contents of
// companiesPath when that file exists and lists anything.
func OverlayCompanies(cfg *Config, companiesPath string) error {
	b, err := os.ReadFile(companiesPath)
	if err != nil {
		// Missing companies file should not kill startup
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}

	if len(cf.Companies) > 0 {
		cfg.Companies = cf.Companies
	}
	return nil
}
