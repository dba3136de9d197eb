package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// StoreProfile describes one named knowledge base: where it persists and
// what it contains before anything has been taught.
type StoreProfile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Key         string      `yaml:"key,omitempty"`
	Title       string      `yaml:"title,omitempty"`
	Placeholder string      `yaml:"placeholder,omitempty"`
	Seed        []SeedEntry `yaml:"seed,omitempty"`
}

type SeedEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// PersistenceKey is the key the profile's knowledge base is saved under.
func (p StoreProfile) PersistenceKey() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

var builtinProfiles = map[string]StoreProfile{
	"general": {
		Name:        "general",
		Description: "General-purpose chatbot that starts empty and learns as you go",
		Title:       "Chatbot",
		Placeholder: "Ask a question...",
	},
	"healthcare": {
		Name:        "healthcare",
		Description: "Healthcare customer service chatbot with common clinic questions",
		Title:       "Healthcare Customer Service Chatbot",
		Placeholder: "How can we assist you today?",
		Seed: []SeedEntry{
			{Question: "How can I schedule an appointment?", Answer: "You can schedule an appointment by calling our hotline at (555) 123-4567 or visiting our website."},
			{Question: "What are your operating hours?", Answer: "Our clinic is open Monday to Friday, from 8:00 AM to 6:00 PM."},
			{Question: "Do you accept insurance?", Answer: "Yes, we accept a variety of insurance plans. Please contact us for a full list."},
			{Question: "Where are you located?", Answer: "We are located at 123 Health Street, Wellness City."},
		},
	},
}

func GetStoresDir() (string, error) {
	dir := filepath.Join(Dir(), "stores")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveStoreProfile writes p. It fails when another profile already
// persists under the same key.
func SaveStoreProfile(p StoreProfile) error {
	if err := validateProfileName(p.Name); err != nil {
		return err
	}
	dir, err := GetStoresDir()
	if err != nil {
		return err
	}
	owner, err := KeyOwner(p.PersistenceKey(), p.Name)
	if err != nil {
		return err
	}
	if owner != "" {
		return fmt.Errorf("key '%s' is already used by store '%s'", p.PersistenceKey(), owner)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, p.Name+".yaml"), data, 0644)
}

// LoadStoreProfile returns the profile saved under name, falling back to the
// built-in profile of the same name.
func LoadStoreProfile(name string) (*StoreProfile, error) {
	if err := validateProfileName(name); err != nil {
		return nil, err
	}
	dir, err := GetStoresDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			if p, ok := builtinProfiles[name]; ok {
				return &p, nil
			}
			return nil, fmt.Errorf("store '%s' not found", name)
		}
		return nil, err
	}

	var p StoreProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("store '%s': %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

// ListStoreProfiles returns built-in and saved profile names, sorted.
func ListStoreProfiles() ([]string, error) {
	dir, err := GetStoresDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for name := range builtinProfiles {
		seen[name] = true
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			seen[strings.TrimSuffix(e.Name(), ".yaml")] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// KeyOwner returns the name of the profile, other than except, that
// persists under key, or "" when there is none.
func KeyOwner(key, except string) (string, error) {
	names, err := ListStoreProfiles()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if name == except {
			continue
		}
		p, err := LoadStoreProfile(name)
		if err != nil {
			continue
		}
		if p.PersistenceKey() == key {
			return name, nil
		}
	}
	return "", nil
}

func DeleteStoreProfile(name string) error {
	if err := validateProfileName(name); err != nil {
		return err
	}
	dir, err := GetStoresDir()
	if err != nil {
		return err
	}

	filename := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if _, ok := builtinProfiles[name]; ok {
			return fmt.Errorf("store '%s' is built in and cannot be deleted", name)
		}
		return fmt.Errorf("store '%s' not found", name)
	}
	return os.Remove(filename)
}

func validateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("store name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid store name %q", name)
	}
	return nil
}
