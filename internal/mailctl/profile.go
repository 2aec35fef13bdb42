package mailctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	configDirName = "mailpanel"
	profilesDir   = "profiles"
	stateFile     = "state.json"
)

// Profile is a saved API endpoint with its key.
type Profile struct {
	Name   string `json:"name"`
	APIURL string `json:"api_url"`
	APIKey string `json:"api_key"`
}

// State holds the active profile selection.
type State struct {
	ActiveProfile string `json:"active_profile"`
}

// configDir returns the base config directory (~/.config/mailpanel/).
func configDir() (string, error) {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, configDirName), nil
}

func ensureConfigDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, profilesDir), 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// SaveProfile stores or replaces a profile. The key file is written 0600.
func SaveProfile(p Profile) (*Profile, error) {
	p.Name = sanitizeName(p.Name)
	if p.Name == "" {
		return nil, errors.New("profile name is required")
	}
	if p.APIURL == "" {
		p.APIURL = DefaultAPIURL
	}
	p.APIURL = strings.TrimRight(p.APIURL, "/")

	dir, err := ensureConfigDir()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, profilesDir, p.Name+".json"), data, 0600); err != nil {
		return nil, fmt.Errorf("write profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns all saved profiles sorted by name.
func ListProfiles() ([]Profile, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, profilesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profiles directory: %w", err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := LoadProfile(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		profiles = append(profiles, *p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func LoadProfile(name string) (*Profile, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, profilesDir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("profile %q not found: %w", name, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", name, err)
	}
	return &p, nil
}

// DeleteProfile removes a saved profile and clears it if it was active.
func DeleteProfile(name string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, profilesDir, name+".json")); err != nil {
		return fmt.Errorf("delete profile %q: %w", name, err)
	}

	state, _ := loadState()
	if state != nil && state.ActiveProfile == name {
		state.ActiveProfile = ""
		return saveState(state)
	}
	return nil
}

func SetActive(name string) error {
	if _, err := LoadProfile(name); err != nil {
		return err
	}
	return saveState(&State{ActiveProfile: name})
}

// GetActive returns the active profile name, or "" when none is set.
func GetActive() string {
	state, err := loadState()
	if err != nil {
		return ""
	}
	return state.ActiveProfile
}

// ResolveEndpoint picks the API URL and key for a command.
// MAILPANEL_API_URL and MAILPANEL_API_KEY win over the active profile.
func ResolveEndpoint() (apiURL, apiKey string) {
	if name := GetActive(); name != "" {
		if p, err := LoadProfile(name); err == nil {
			apiURL, apiKey = p.APIURL, p.APIKey
		}
	}
	if v := os.Getenv("MAILPANEL_API_URL"); v != "" {
		apiURL = v
	}
	if v := os.Getenv("MAILPANEL_API_KEY"); v != "" {
		apiKey = v
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return apiURL, apiKey
}

func loadState() (*State, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func saveState(state *State) error {
	dir, err := ensureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFile), data, 0600)
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
	return strings.Trim(name, "-")
}
