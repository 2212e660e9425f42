package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := os.Getenv("ENV"); env {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsDevelopment reports whether e is the development environment
func (e Environment) IsDevelopment() bool { return e == Development }

// IsTest reports whether e is the test environment
func (e Environment) IsTest() bool { return e == Test }

// IsProduction reports whether e is production
func (e Environment) IsProduction() bool { return e == Production }

// String implements fmt.Stringer
func (e Environment) String() string { return string(e) }
