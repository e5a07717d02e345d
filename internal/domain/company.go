package domain

type Company struct {
	Name       string
	CareersURL string
	SiteDomain string // bare host, e.g. acme.com; optional, used for discovery
}
