package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

// LocationRename maps a booked resource name to the name printed in reports.
type LocationRename struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ReportDefaults carries the instance-specific ID sets and rename tables the
// monthly plan is built from. The embedded defaults match the reference
// ChurchTools instance; operators point APP_REPORT_DEFAULTS at their own file.
type ReportDefaults struct {
	TimeframeMonths int `yaml:"timeframe_months"`

	SelectedCalendars     []int `yaml:"selected_calendars"`
	SpecialDayCalendarIDs []int `yaml:"special_day_calendar_ids"`

	AvailableResourceTypeIDs []int `yaml:"available_resource_type_ids"`
	SelectedResources        []int `yaml:"selected_resources"`

	SelectedProgramServices []int `yaml:"selected_program_services"`
	SelectedMusicServices   []int `yaml:"selected_music_services"`
	TitlePrefixGroups       []int `yaml:"title_prefix_groups"`
	GroupTypeRoleIDLeads    []int `yaml:"grouptype_role_id_leads"`

	ProgramServiceGroupID int   `yaml:"program_service_group_id"`
	MusicServiceGroupIDs  []int `yaml:"music_service_group_ids"`

	// Per-role service ID sets used for the lastname columns.
	RoleServiceIDs map[string][]int `yaml:"role_service_ids"`

	CommunionServiceIDs []int `yaml:"abendmahl_service_ids"`

	LocationRenames []LocationRename `yaml:"location_renames"`

	DocxFooterTexts []string `yaml:"docx_footer_texts"`
}

// LoadReportDefaults returns the embedded defaults, overridden by the YAML
// file at path when given.
func LoadReportDefaults(path string) (*ReportDefaults, error) {
	defaults := &ReportDefaults{}
	if err := yaml.Unmarshal(embeddedDefaults, defaults); err != nil {
		return nil, fmt.Errorf("parse embedded report defaults: %w", err)
	}

	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report defaults %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, defaults); err != nil {
		return nil, fmt.Errorf("parse report defaults %s: %w", path, err)
	}
	return defaults, nil
}
