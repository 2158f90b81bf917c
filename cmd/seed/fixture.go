package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/nishad-backend/internal/domain/user"
)

type fixture struct {
	Users  []fixtureUser  `yaml:"users"`
	Assets []fixtureAsset `yaml:"assets"`
	Events []fixtureEvent `yaml:"events"`
}

type fixtureUser struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Phone     string `yaml:"phone"`
	Role      string `yaml:"role"`
	Password  string `yaml:"password"`
	// GatePass grants the gate-pass delegation on top of the role.
	GatePass bool `yaml:"gatepass"`
}

type fixtureAsset struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Condition    string `yaml:"condition"`
	Location     string `yaml:"location"`
	Constituency string `yaml:"constituency"`
	SerialNumber string `yaml:"serial_number"`
	Notes        string `yaml:"notes"`
}

type fixtureEvent struct {
	Title    string    `yaml:"title"`
	Venue    string    `yaml:"venue"`
	StartsAt time.Time `yaml:"starts_at"`
	Hours    int       `yaml:"hours"`
}

func loadFixture(path string) (*fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" {
			return nil, fmt.Errorf("users[%d]: email is required", i)
		}
		if strings.TrimSpace(u.Role) == "" {
			f.Users[i].Role = string(user.RoleSupporter)
			continue
		}
		role, ok := user.ParseRole(u.Role)
		if !ok {
			return nil, fmt.Errorf("users[%d]: unknown role %q", i, u.Role)
		}
		f.Users[i].Role = string(role)
	}
	for i, a := range f.Assets {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Type) == "" {
			return nil, fmt.Errorf("assets[%d]: name and type are required", i)
		}
	}
	return &f, nil
}
