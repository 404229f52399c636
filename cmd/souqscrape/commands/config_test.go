package commands

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	require.Equal(t, "https://www.q84sale.com", cfg.BaseUrl)
	require.Equal(t, "CONTRACTING_GCLOUD_KEY_JSON", cfg.Contracting.CredentialsEnv)
	require.Equal(t, "SERVICES_GCLOUD_KEY_JSON", cfg.Services.CredentialsEnv)
	require.Equal(t, "SERVICES_GCLOUD_KEY_JSON", cfg.Medical.CredentialsEnv)
	require.Equal(t, "https://www.q84sale.com/ar/services/medical-services", cfg.Medical.LandingUrl)
	require.Equal(t, []string{"تمريض"}, cfg.Medical.SpecificBrands)
	require.Equal(t, 2, cfg.Medical.SpecificPages)
}

func TestConfigDefaultsKeepOverrides(t *testing.T) {
	cfg := Config{
		BaseUrl: "http://127.0.0.1:9999",
		Contracting: SectionConfig{
			CredentialsEnv: "TEST_KEY_JSON",
			ParentFolder:   "folder-x",
		},
	}.withDefaults()

	require.Equal(t, "TEST_KEY_JSON", cfg.Contracting.CredentialsEnv)
	require.Equal(t, "folder-x", cfg.Contracting.ParentFolder)
	require.Equal(t, "http://127.0.0.1:9999/ar/services/medical-services", cfg.Medical.LandingUrl)
}

func TestCategoryTemplates(t *testing.T) {
	contracting := contractingCategories("https://site")
	require.Len(t, contracting, 23)
	require.Equal(t,
		"https://site/ar/contracting/bugs-exterminator/%d",
		contracting[0].Sources[0].URLTemplate)
	require.Equal(t,
		"https://site/ar/contracting/plumber/3",
		fmt.Sprintf(contracting[1].Sources[0].URLTemplate, 3))

	services := servicesCategories("https://site")
	require.Len(t, services, 14)
	require.Equal(t, 7, services[1].Sources[0].Pages)
}
